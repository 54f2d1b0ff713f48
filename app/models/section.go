package models

import (
	"fmt"
	"time"
)

const (
	// StorageMethodInline marks sections whose bytes live base64-encoded in the database row.
	StorageMethodInline = "d1_blob"
	// StorageMethodR2 marks sections whose bytes live in the R2 bucket.
	StorageMethodR2 = "r2_bucket"
	// StorageMethodExternal marks sections referenced by an opaque external key.
	StorageMethodExternal = "external"
)

// DefaultCurrencyCode is the only currency supported by the payment flow.
const DefaultCurrencyCode = "USDC"

// Section is one purchasable slice of a textbook. At most one of
// PdfBlob / R2Key / ExternalKey is authoritative; the resolver checks
// them in exactly that order.
type Section struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TextbookID      uint      `gorm:"index;not null" json:"textbook_id"`
	Textbook        Textbook  `gorm:"foreignKey:TextbookID" json:"-"`
	SectionNumber   int       `gorm:"not null" json:"section_number"`
	ResourceID      string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"resource_id"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	PdfBlob         *string   `gorm:"type:longtext" json:"-"` // base64, never serialized in metadata responses
	R2Key           *string   `gorm:"type:varchar(255)" json:"r2_key,omitempty"`
	R2URL           *string   `gorm:"type:varchar(255)" json:"r2_url,omitempty"`
	ExternalKey     *string   `gorm:"type:varchar(255)" json:"external_key,omitempty"`
	CurrencyCode    string    `gorm:"type:varchar(10);not null;default:'USDC'" json:"currency_code"`
	PriceMinorUnits int64     `gorm:"not null" json:"price_minor_units"`
	MimeType        string    `gorm:"type:varchar(100);not null;default:'application/pdf'" json:"mime_type"`
	SizeBytes       int64     `gorm:"type:bigint" json:"size_bytes"`
	SHA256          string    `gorm:"type:char(64);column:sha256" json:"sha256"`
	WordCount       *int      `gorm:"type:int" json:"word_count,omitempty"`
	Summary         string    `gorm:"type:text" json:"summary"`
	Keywords        string    `gorm:"type:text" json:"keywords"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BuildResourceID derives the globally unique section identifier,
// e.g. "blockchain-fundamentals-003".
func BuildResourceID(textbookSlug string, sectionNumber int) string {
	return fmt.Sprintf("%s-%03d", textbookSlug, sectionNumber)
}

// StorageMethod reports where the section bytes currently live, using
// the same priority order as the content resolver.
func (s *Section) StorageMethod() string {
	switch {
	case s.PdfBlob != nil && *s.PdfBlob != "":
		return StorageMethodInline
	case s.R2Key != nil && *s.R2Key != "":
		return StorageMethodR2
	case s.ExternalKey != nil && *s.ExternalKey != "":
		return StorageMethodExternal
	default:
		return ""
	}
}

// HasInlineBlob reports whether the row still carries inline bytes.
func (s *Section) HasInlineBlob() bool {
	return s.PdfBlob != nil && *s.PdfBlob != ""
}
