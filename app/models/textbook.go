package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Textbook is a priced document decomposed into purchasable sections.
type Textbook struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Slug          string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"slug" validate:"required,min=1,max=191"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Author        *string   `gorm:"type:varchar(255)" json:"author,omitempty"`
	Description   *string   `gorm:"type:text" json:"description,omitempty"`
	TotalSections int       `gorm:"default:0" json:"total_sections"`
	Sections      []Section `gorm:"foreignKey:TextbookID" json:"sections,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Textbook) Validate() error {
	v := validator.New()

	return v.Struct(t)
}
