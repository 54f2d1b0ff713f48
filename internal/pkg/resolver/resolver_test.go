package resolver

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
)

func strPtr(s string) *string {
	return &s
}

func TestResolveInline(t *testing.T) {
	raw := []byte("%PDF-1.4 fake content")
	encoded := base64.StdEncoding.EncodeToString(raw)

	section := &models.Section{
		ResourceID: "blockchain-fundamentals-001",
		PdfBlob:    &encoded,
		MimeType:   "application/pdf",
	}

	content, err := Resolve(section)
	require.NoError(t, err)
	assert.True(t, content.IsInline())
	assert.Equal(t, raw, content.Bytes)
	assert.Equal(t, "application/pdf", content.MimeType)
	assert.Empty(t, content.R2URL)
	assert.Empty(t, content.ExternalKey)
}

func TestResolveInlineWinsOverPointers(t *testing.T) {
	// A row mid-migration can carry both the blob and a fresh pointer.
	raw := []byte("inline bytes")
	encoded := base64.StdEncoding.EncodeToString(raw)

	section := &models.Section{
		ResourceID: "blockchain-fundamentals-002",
		PdfBlob:    &encoded,
		R2URL:      strPtr("https://cdn.example.com/pdfs/blockchain-fundamentals/blockchain-fundamentals-002.pdf"),
	}

	content, err := Resolve(section)
	require.NoError(t, err)
	assert.True(t, content.IsInline())
	assert.Equal(t, raw, content.Bytes)
	assert.Empty(t, content.R2URL)
}

func TestResolveR2Pointer(t *testing.T) {
	section := &models.Section{
		ResourceID: "blockchain-fundamentals-003",
		R2Key:      strPtr("pdfs/blockchain-fundamentals/blockchain-fundamentals-003.pdf"),
		R2URL:      strPtr("https://cdn.example.com/pdfs/blockchain-fundamentals/blockchain-fundamentals-003.pdf"),
	}

	content, err := Resolve(section)
	require.NoError(t, err)
	assert.False(t, content.IsInline())
	assert.Equal(t, *section.R2URL, content.R2URL)
}

func TestResolveExternalPointer(t *testing.T) {
	section := &models.Section{
		ResourceID:  "blockchain-fundamentals-004",
		ExternalKey: strPtr("legacy/chapter-4.pdf"),
		MimeType:    "application/pdf",
	}

	content, err := Resolve(section)
	require.NoError(t, err)
	assert.Equal(t, "legacy/chapter-4.pdf", content.ExternalKey)
}

func TestResolveNoContent(t *testing.T) {
	tests := []struct {
		name    string
		section models.Section
	}{
		{name: "all fields nil", section: models.Section{ResourceID: "empty-001"}},
		{name: "empty strings", section: models.Section{ResourceID: "empty-002", PdfBlob: strPtr(""), R2URL: strPtr(""), ExternalKey: strPtr("")}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(&tc.section)
			assert.ErrorIs(t, err, ErrNoContent)
		})
	}
}

func TestResolveCorruptBlob(t *testing.T) {
	section := &models.Section{
		ResourceID: "broken-001",
		PdfBlob:    strPtr("!!!not-base64!!!"),
	}

	_, err := Resolve(section)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoContent)
}

func TestResolveDefaultsMimeType(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("x"))
	section := &models.Section{ResourceID: "mime-001", PdfBlob: &encoded}

	content, err := Resolve(section)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", content.MimeType)
}
