package repository

import (
	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sectionRepository implements the SectionRepository interface
type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository creates a new section repository instance
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

// Upsert creates a section or replaces the content/pricing fields of an
// existing one keyed by resource_id. Grants referencing the resource are
// untouched.
func (r *sectionRepository) Upsert(section *models.Section) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "resource_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"textbook_id",
			"section_number",
			"title",
			"pdf_blob",
			"r2_key",
			"r2_url",
			"external_key",
			"currency_code",
			"price_minor_units",
			"mime_type",
			"size_bytes",
			"sha256",
			"summary",
			"keywords",
			"updated_at",
		}),
	}).Create(section).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("resource_id = ?", section.ResourceID).First(section).Error
}

// GetByResourceID retrieves a section by its resource identifier
func (r *sectionRepository) GetByResourceID(resourceID string) (*models.Section, error) {
	var section models.Section
	err := r.db.Where("resource_id = ?", resourceID).First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// ListByTextbookSlug retrieves all sections of a textbook in section order
func (r *sectionRepository) ListByTextbookSlug(slug string) ([]models.Section, error) {
	var sections []models.Section
	err := r.db.
		Joins("JOIN textbooks t ON sections.textbook_id = t.id").
		Where("t.slug = ?", slug).
		Order("sections.section_number").
		Find(&sections).Error
	return sections, err
}

// Search runs a full-text query over title/summary/keywords, optionally
// scoped to one textbook. Requires the FULLTEXT index created by the
// SQL migrations.
func (r *sectionRepository) Search(query, textbookSlug string, limit int) ([]models.Section, error) {
	if limit <= 0 {
		limit = 10
	}
	q := r.db.
		Joins("JOIN textbooks t ON sections.textbook_id = t.id").
		Where("MATCH(sections.title, sections.summary, sections.keywords) AGAINST(? IN NATURAL LANGUAGE MODE)", query)
	if textbookSlug != "" {
		q = q.Where("t.slug = ?", textbookSlug)
	}

	var sections []models.Section
	err := q.Limit(limit).Find(&sections).Error
	return sections, err
}

// ListInlineCandidates returns sections with inline bytes and no R2 key
// whose size exceeds thresholdBytes. A threshold of zero selects every
// inline row, including rows with an unset size.
func (r *sectionRepository) ListInlineCandidates(thresholdBytes int64) ([]models.Section, error) {
	q := r.db.
		Preload("Textbook").
		Where("pdf_blob IS NOT NULL AND pdf_blob != ''").
		Where("(r2_key IS NULL OR r2_key = '')")
	if thresholdBytes > 0 {
		q = q.Where("size_bytes > ?", thresholdBytes)
	}

	var sections []models.Section
	err := q.Order("size_bytes DESC").Find(&sections).Error
	return sections, err
}

// SwitchToR2 flips a row from inline to object storage in one UPDATE
func (r *sectionRepository) SwitchToR2(sectionID uint, r2Key, r2URL string) error {
	return r.db.Model(&models.Section{}).
		Where("id = ?", sectionID).
		Updates(map[string]interface{}{
			"r2_key":   r2Key,
			"r2_url":   r2URL,
			"pdf_blob": nil,
		}).Error
}

// ListReferencedR2Keys returns every R2 key referenced by a section row
func (r *sectionRepository) ListReferencedR2Keys() ([]string, error) {
	var keys []string
	err := r.db.Model(&models.Section{}).
		Where("r2_key IS NOT NULL AND r2_key != ''").
		Pluck("r2_key", &keys).Error
	return keys, err
}

// TierStats aggregates count/total/avg size for inline and R2-backed sections
func (r *sectionRepository) TierStats() (TierStats, TierStats, error) {
	type row struct {
		Count     int64
		TotalSize int64
		AvgSize   float64
	}

	var inline, object row
	if err := r.db.Model(&models.Section{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size_bytes),0) AS total_size, COALESCE(AVG(size_bytes),0) AS avg_size").
		Where("pdf_blob IS NOT NULL AND pdf_blob != ''").
		Scan(&inline).Error; err != nil {
		return TierStats{}, TierStats{}, err
	}
	if err := r.db.Model(&models.Section{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size_bytes),0) AS total_size, COALESCE(AVG(size_bytes),0) AS avg_size").
		Where("r2_key IS NOT NULL AND r2_key != ''").
		Scan(&object).Error; err != nil {
		return TierStats{}, TierStats{}, err
	}

	return TierStats{Count: inline.Count, TotalSize: inline.TotalSize, AvgSize: inline.AvgSize},
		TierStats{Count: object.Count, TotalSize: object.TotalSize, AvgSize: object.AvgSize},
		nil
}

// StorageBreakdown returns the per-textbook storage rollup, largest first
func (r *sectionRepository) StorageBreakdown() ([]TextbookStorageBreakdown, error) {
	var rows []TextbookStorageBreakdown
	err := r.db.
		Table("textbooks t").
		Select(`t.slug AS textbook_slug,
			t.title AS textbook_title,
			COUNT(s.id) AS total_sections,
			COALESCE(SUM(CASE WHEN s.pdf_blob IS NOT NULL AND s.pdf_blob != '' THEN 1 ELSE 0 END),0) AS d1_sections,
			COALESCE(SUM(CASE WHEN s.r2_key IS NOT NULL AND s.r2_key != '' THEN 1 ELSE 0 END),0) AS r2_sections,
			COALESCE(SUM(CASE WHEN s.external_key IS NOT NULL AND s.external_key != '' THEN 1 ELSE 0 END),0) AS external_sections,
			COALESCE(SUM(s.size_bytes),0) AS total_size,
			COALESCE(SUM(CASE WHEN s.pdf_blob IS NOT NULL AND s.pdf_blob != '' THEN s.size_bytes ELSE 0 END),0) AS d1_size,
			COALESCE(SUM(CASE WHEN s.r2_key IS NOT NULL AND s.r2_key != '' THEN s.size_bytes ELSE 0 END),0) AS r2_size`).
		Joins("LEFT JOIN sections s ON t.id = s.textbook_id").
		Group("t.id, t.slug, t.title").
		Order("total_size DESC").
		Scan(&rows).Error
	return rows, err
}
