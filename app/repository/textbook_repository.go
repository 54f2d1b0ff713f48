package repository

import (
	"errors"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"gorm.io/gorm"
)

// textbookRepository implements the TextbookRepository interface
type textbookRepository struct {
	db *gorm.DB
}

// NewTextbookRepository creates a new textbook repository instance
func NewTextbookRepository(db *gorm.DB) TextbookRepository {
	return &textbookRepository{db: db}
}

// Create creates a new textbook in the database
func (r *textbookRepository) Create(textbook *models.Textbook) error {
	return r.db.Create(textbook).Error
}

// GetByID retrieves a textbook by its ID
func (r *textbookRepository) GetByID(id uint) (*models.Textbook, error) {
	var textbook models.Textbook
	err := r.db.First(&textbook, id).Error
	if err != nil {
		return nil, err
	}
	return &textbook, nil
}

// GetBySlug retrieves a textbook by its slug
func (r *textbookRepository) GetBySlug(slug string) (*models.Textbook, error) {
	var textbook models.Textbook
	err := r.db.Where("slug = ?", slug).First(&textbook).Error
	if err != nil {
		return nil, err
	}
	return &textbook, nil
}

// SlugExists checks whether a textbook with the given slug already exists
func (r *textbookRepository) SlugExists(slug string) (bool, error) {
	var textbook models.Textbook
	err := r.db.Select("id").Where("slug = ?", slug).First(&textbook).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListWithSectionCounts returns all textbooks with their live section counts,
// newest first
func (r *textbookRepository) ListWithSectionCounts() ([]TextbookWithCount, error) {
	var rows []TextbookWithCount
	err := r.db.
		Table("textbooks t").
		Select("t.*, COUNT(s.id) AS section_count").
		Joins("LEFT JOIN sections s ON t.id = s.textbook_id").
		Group("t.id").
		Order("t.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// RecalculateTotalSections refreshes the denormalized section count on a textbook
func (r *textbookRepository) RecalculateTotalSections(textbookID uint) error {
	return r.db.Model(&models.Textbook{}).
		Where("id = ?", textbookID).
		Update("total_sections", r.db.Model(&models.Section{}).
			Select("COUNT(*)").
			Where("textbook_id = ?", textbookID),
		).Error
}
