package repository

import (
	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"gorm.io/gorm"
)

// TextbookRepository defines the interface for textbook-related database operations
type TextbookRepository interface {
	Create(textbook *models.Textbook) error
	GetByID(id uint) (*models.Textbook, error)
	GetBySlug(slug string) (*models.Textbook, error)
	SlugExists(slug string) (bool, error)
	ListWithSectionCounts() ([]TextbookWithCount, error)
	RecalculateTotalSections(textbookID uint) error
}

// SectionRepository defines the interface for section-related database operations
type SectionRepository interface {
	Upsert(section *models.Section) error
	GetByResourceID(resourceID string) (*models.Section, error)
	ListByTextbookSlug(slug string) ([]models.Section, error)
	Search(query, textbookSlug string, limit int) ([]models.Section, error)
	// ListInlineCandidates returns sections still carrying inline bytes,
	// without an R2 key, larger than thresholdBytes.
	ListInlineCandidates(thresholdBytes int64) ([]models.Section, error)
	// SwitchToR2 writes the new pointer and clears the inline blob in a
	// single UPDATE, so a crash can never leave the row unservable.
	SwitchToR2(sectionID uint, r2Key, r2URL string) error
	ListReferencedR2Keys() ([]string, error)
	TierStats() (inline TierStats, r2 TierStats, err error)
	StorageBreakdown() ([]TextbookStorageBreakdown, error)
}

// AccessRepository defines the interface for entitlement lookups
type AccessRepository interface {
	Exists(userID, resourceID string) (bool, error)
	CreateIfNotExists(access *models.UserAccess) error
	ListSectionsForUser(userID, textbookSlug string) ([]models.Section, error)
}

// PaymentRepository defines the interface for the payment ledger
type PaymentRepository interface {
	Create(payment *models.UserPayment) error
	ListByUser(userID, status string) ([]models.UserPayment, error)
}

// TextbookWithCount carries a textbook row plus its live section count.
type TextbookWithCount struct {
	models.Textbook
	SectionCount int64 `json:"section_count"`
}

// TierStats aggregates one storage tier for the analysis endpoint.
type TierStats struct {
	Count     int64   `json:"count"`
	TotalSize int64   `json:"totalSize"`
	AvgSize   float64 `json:"avgSize"`
}

// TextbookStorageBreakdown is the per-textbook storage rollup.
type TextbookStorageBreakdown struct {
	TextbookSlug     string `json:"textbook_slug"`
	TextbookTitle    string `json:"textbook_title"`
	TotalSections    int64  `json:"total_sections"`
	D1Sections       int64  `json:"d1_sections"`
	R2Sections       int64  `json:"r2_sections"`
	ExternalSections int64  `json:"external_sections"`
	TotalSize        int64  `json:"total_size"`
	D1Size           int64  `json:"d1_size"`
	R2Size           int64  `json:"r2_size"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	Textbook TextbookRepository
	Section  SectionRepository
	Access   AccessRepository
	Payment  PaymentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Textbook: NewTextbookRepository(db),
		Section:  NewSectionRepository(db),
		Access:   NewAccessRepository(db),
		Payment:  NewPaymentRepository(db),
	}
}
