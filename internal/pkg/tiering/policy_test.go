package tiering

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
)

func TestDecideTier(t *testing.T) {
	tests := []struct {
		name        string
		sizeBytes   int64
		r2Available bool
		want        string
		wantErr     error
	}{
		{name: "small file stays inline", sizeBytes: 900 * 1024, r2Available: true, want: models.StorageMethodInline},
		{name: "small file inline without R2", sizeBytes: 900 * 1024, r2Available: false, want: models.StorageMethodInline},
		{name: "exactly at threshold stays inline", sizeBytes: InlineThresholdBytes, r2Available: false, want: models.StorageMethodInline},
		{name: "one byte over goes to R2", sizeBytes: InlineThresholdBytes + 1, r2Available: true, want: models.StorageMethodR2},
		{name: "large file goes to R2", sizeBytes: 2 * 1024 * 1024, r2Available: true, want: models.StorageMethodR2},
		{name: "large file without R2 is rejected", sizeBytes: 2 * 1024 * 1024, r2Available: false, wantErr: ErrPayloadTooLarge},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecideTier(tc.sizeBytes, tc.r2Available)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPlaceContentInline(t *testing.T) {
	raw := []byte("%PDF-1.4 small file")
	svc := NewService(newFakeSectionRepo(), nil)

	placement, err := svc.PlaceContent(raw, "blockchain-fundamentals", "blockchain-fundamentals-001")
	require.NoError(t, err)

	assert.Equal(t, models.StorageMethodInline, placement.Method)
	require.NotNil(t, placement.PdfBlob)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), *placement.PdfBlob)
	assert.Nil(t, placement.R2Key)
	assert.Nil(t, placement.R2URL)
	assert.Equal(t, int64(len(raw)), placement.SizeBytes)

	sum := sha256.Sum256(raw)
	assert.Equal(t, hex.EncodeToString(sum[:]), placement.SHA256)
}

func TestPlaceContentUploadsLargeFiles(t *testing.T) {
	raw := make([]byte, InlineThresholdBytes+1)
	store := newFakeStore()
	svc := NewService(newFakeSectionRepo(), store)

	placement, err := svc.PlaceContent(raw, "blockchain-fundamentals", "blockchain-fundamentals-002")
	require.NoError(t, err)

	assert.Equal(t, models.StorageMethodR2, placement.Method)
	assert.Nil(t, placement.PdfBlob)
	require.NotNil(t, placement.R2Key)
	assert.Equal(t, "pdfs/blockchain-fundamentals/blockchain-fundamentals-002.pdf", *placement.R2Key)
	require.NotNil(t, placement.R2URL)
	assert.Contains(t, store.objects, *placement.R2Key)
}

func TestPlaceContentRejectsLargeFilesWithoutStore(t *testing.T) {
	raw := make([]byte, InlineThresholdBytes+1)
	svc := NewService(newFakeSectionRepo(), nil)

	_, err := svc.PlaceContent(raw, "blockchain-fundamentals", "blockchain-fundamentals-003")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}
