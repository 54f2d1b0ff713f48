package resolver

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
)

// ErrNoContent is returned when a section row has no populated content
// location.
var ErrNoContent = errors.New("no content available for this section")

// Content is the resolved representation of a section's bytes: either
// decoded inline bytes or a pointer the caller fetches directly.
type Content struct {
	Bytes       []byte // populated for the inline tier only
	R2URL       string
	ExternalKey string
	MimeType    string
}

// IsInline reports whether the content carries the bytes themselves.
func (c *Content) IsInline() bool {
	return len(c.Bytes) > 0
}

// Resolve picks the authoritative content location of a section. The
// order is fixed: inline blob, then R2 pointer, then external pointer.
// A row mid-migration can transiently carry both an inline blob and a
// fresh pointer; inline wins until the tiering sweep clears it.
func Resolve(section *models.Section) (*Content, error) {
	mimeType := section.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	if section.HasInlineBlob() {
		raw, err := base64.StdEncoding.DecodeString(*section.PdfBlob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inline blob for %s: %w", section.ResourceID, err)
		}
		return &Content{Bytes: raw, MimeType: mimeType}, nil
	}

	if section.R2URL != nil && *section.R2URL != "" {
		return &Content{R2URL: *section.R2URL, MimeType: mimeType}, nil
	}

	if section.ExternalKey != nil && *section.ExternalKey != "" {
		return &Content{ExternalKey: *section.ExternalKey, MimeType: mimeType}, nil
	}

	return nil, ErrNoContent
}
