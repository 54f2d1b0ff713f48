package tiering

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"github.com/adlonymous/cf-ai-sliceread/app/repository"
)

const (
	// InlineThresholdBytes is the ceiling for storing section bytes
	// base64-encoded in the database row. Above it, bytes go to R2.
	InlineThresholdBytes = 1024 * 1024 // 1 MiB

	// DefaultOptimizeThresholdMB is the default ceiling for the
	// progressive optimize sweep.
	DefaultOptimizeThresholdMB = 0.5
)

var (
	// ErrPayloadTooLarge is returned when a file exceeds the inline
	// ceiling and no R2 tier is configured to take it.
	ErrPayloadTooLarge = errors.New("file exceeds inline storage limit and no object storage is configured")
)

// ObjectStore is the object-storage surface the tiering policy needs.
// *storage.Client satisfies it; tests substitute a fake.
type ObjectStore interface {
	ObjectKey(textbookSlug, resourceID string) string
	UploadPDF(objectKey string, data []byte, resourceID, textbookSlug string) (string, error)
	DeletePDF(objectKey string) error
	ListKeys() ([]string, error)
}

// Service decides where section bytes live and keeps that placement
// consistent over time. It holds no mutable state.
type Service struct {
	sections repository.SectionRepository
	store    ObjectStore // nil when the R2 tier is disabled
}

// NewService creates a tiering service. store may be nil; the service
// then operates in inline-only mode and rejects oversized uploads.
func NewService(sections repository.SectionRepository, store ObjectStore) *Service {
	return &Service{sections: sections, store: store}
}

// Placement is the outcome of a placement decision: exactly one of the
// inline or pointer field groups is populated.
type Placement struct {
	Method    string // models.StorageMethodInline or models.StorageMethodR2
	PdfBlob   *string
	R2Key     *string
	R2URL     *string
	SizeBytes int64
	SHA256    string
}

// DecideTier is the pure placement rule: inline up to the threshold,
// object storage above it, error above it when no object tier exists.
func DecideTier(sizeBytes int64, r2Available bool) (string, error) {
	if sizeBytes <= InlineThresholdBytes {
		return models.StorageMethodInline, nil
	}
	if !r2Available {
		return "", ErrPayloadTooLarge
	}
	return models.StorageMethodR2, nil
}

// PlaceContent hashes the raw bytes, applies the placement rule and, for
// the object tier, performs the upload. The returned Placement has
// exactly one authoritative location.
func (s *Service) PlaceContent(raw []byte, textbookSlug, resourceID string) (*Placement, error) {
	sum := sha256.Sum256(raw)
	placement := &Placement{
		SizeBytes: int64(len(raw)),
		SHA256:    hex.EncodeToString(sum[:]),
	}

	method, err := DecideTier(placement.SizeBytes, s.store != nil)
	if err != nil {
		return nil, err
	}
	placement.Method = method

	if method == models.StorageMethodInline {
		encoded := base64.StdEncoding.EncodeToString(raw)
		placement.PdfBlob = &encoded
		return placement, nil
	}

	key := s.store.ObjectKey(textbookSlug, resourceID)
	url, err := s.store.UploadPDF(key, raw, resourceID, textbookSlug)
	if err != nil {
		return nil, err
	}
	placement.R2Key = &key
	placement.R2URL = &url
	return placement, nil
}
