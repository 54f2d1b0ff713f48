package repository

import (
	"errors"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accessRepository implements the AccessRepository interface
type accessRepository struct {
	db *gorm.DB
}

// NewAccessRepository creates a new access repository instance
func NewAccessRepository(db *gorm.DB) AccessRepository {
	return &accessRepository{db: db}
}

// Exists reports whether an entitlement row exists for the pair
func (r *accessRepository) Exists(userID, resourceID string) (bool, error) {
	var access models.UserAccess
	err := r.db.Select("id").
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		First(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateIfNotExists inserts the grant, ignoring the duplicate-key case.
// The unique index on (user_id, resource_id) makes concurrent purchase
// attempts for the same pair collapse into one row.
func (r *accessRepository) CreateIfNotExists(access *models.UserAccess) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "resource_id"},
		},
		DoNothing: true,
	}).Create(access).Error
}

// ListSectionsForUser retrieves the sections a user is entitled to, in
// section order, optionally scoped to one textbook
func (r *accessRepository) ListSectionsForUser(userID, textbookSlug string) ([]models.Section, error) {
	q := r.db.
		Joins("JOIN user_access ua ON sections.resource_id = ua.resource_id").
		Joins("JOIN textbooks t ON sections.textbook_id = t.id").
		Where("ua.user_id = ?", userID)
	if textbookSlug != "" {
		q = q.Where("t.slug = ?", textbookSlug)
	}

	var sections []models.Section
	err := q.Order("sections.section_number").Find(&sections).Error
	return sections, err
}
