package tiering

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"github.com/adlonymous/cf-ai-sliceread/app/repository"
)

// fakeSectionRepo is an in-memory SectionRepository for sweep tests.
type fakeSectionRepo struct {
	sections map[uint]*models.Section
	nextID   uint
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{sections: make(map[uint]*models.Section), nextID: 1}
}

func (r *fakeSectionRepo) add(section models.Section) *models.Section {
	section.ID = r.nextID
	r.nextID++
	r.sections[section.ID] = &section
	return r.sections[section.ID]
}

func (r *fakeSectionRepo) Upsert(section *models.Section) error {
	r.add(*section)
	return nil
}

func (r *fakeSectionRepo) GetByResourceID(resourceID string) (*models.Section, error) {
	for _, s := range r.sections {
		if s.ResourceID == resourceID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSectionRepo) ListByTextbookSlug(slug string) ([]models.Section, error) {
	var out []models.Section
	for _, s := range r.sections {
		if s.Textbook.Slug == slug {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSectionRepo) Search(query, textbookSlug string, limit int) ([]models.Section, error) {
	return nil, nil
}

func (r *fakeSectionRepo) ListInlineCandidates(thresholdBytes int64) ([]models.Section, error) {
	var out []models.Section
	for _, s := range r.sections {
		if !s.HasInlineBlob() || (s.R2Key != nil && *s.R2Key != "") {
			continue
		}
		if thresholdBytes > 0 && s.SizeBytes <= thresholdBytes {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSectionRepo) SwitchToR2(sectionID uint, r2Key, r2URL string) error {
	s, ok := r.sections[sectionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.R2Key = &r2Key
	s.R2URL = &r2URL
	s.PdfBlob = nil
	return nil
}

func (r *fakeSectionRepo) ListReferencedR2Keys() ([]string, error) {
	var keys []string
	for _, s := range r.sections {
		if s.R2Key != nil && *s.R2Key != "" {
			keys = append(keys, *s.R2Key)
		}
	}
	return keys, nil
}

func (r *fakeSectionRepo) TierStats() (repository.TierStats, repository.TierStats, error) {
	var inline, object repository.TierStats
	for _, s := range r.sections {
		switch s.StorageMethod() {
		case models.StorageMethodInline:
			inline.Count++
			inline.TotalSize += s.SizeBytes
		case models.StorageMethodR2:
			object.Count++
			object.TotalSize += s.SizeBytes
		}
	}
	if inline.Count > 0 {
		inline.AvgSize = float64(inline.TotalSize) / float64(inline.Count)
	}
	if object.Count > 0 {
		object.AvgSize = float64(object.TotalSize) / float64(object.Count)
	}
	return inline, object, nil
}

func (r *fakeSectionRepo) StorageBreakdown() ([]repository.TextbookStorageBreakdown, error) {
	return nil, nil
}

// fakeStore is an in-memory ObjectStore.
type fakeStore struct {
	objects   map[string][]byte
	failKeys  map[string]bool
	deleted   []string
	uploads   int
	listError error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte), failKeys: make(map[string]bool)}
}

func (f *fakeStore) ObjectKey(textbookSlug, resourceID string) string {
	return fmt.Sprintf("pdfs/%s/%s.pdf", textbookSlug, resourceID)
}

func (f *fakeStore) UploadPDF(objectKey string, data []byte, resourceID, textbookSlug string) (string, error) {
	if f.failKeys[objectKey] {
		return "", fmt.Errorf("upload rejected for %s", objectKey)
	}
	f.objects[objectKey] = data
	f.uploads++
	return "https://cdn.example.com/" + objectKey, nil
}

func (f *fakeStore) DeletePDF(objectKey string) error {
	if f.failKeys[objectKey] {
		return fmt.Errorf("delete rejected for %s", objectKey)
	}
	delete(f.objects, objectKey)
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeStore) ListKeys() ([]string, error) {
	if f.listError != nil {
		return nil, f.listError
	}
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func inlineSection(slug string, number int, size int) models.Section {
	encoded := base64.StdEncoding.EncodeToString(make([]byte, size))
	return models.Section{
		Textbook:   models.Textbook{Slug: slug},
		ResourceID: models.BuildResourceID(slug, number),
		Title:      fmt.Sprintf("Section %d", number),
		PdfBlob:    &encoded,
		SizeBytes:  int64(size),
	}
}

func TestMigrateAllMovesInlineBlobs(t *testing.T) {
	repo := newFakeSectionRepo()
	repo.add(inlineSection("blockchain-fundamentals", 1, 1000))
	repo.add(inlineSection("blockchain-fundamentals", 2, 2000))
	store := newFakeStore()
	svc := NewService(repo, store)

	migrated, results, err := svc.MigrateAll()
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "success", r.Status)
	}
	assert.Equal(t, 2, store.uploads)

	for _, s := range repo.sections {
		assert.False(t, s.HasInlineBlob())
		require.NotNil(t, s.R2Key)
		assert.Contains(t, store.objects, *s.R2Key)
	}
}

func TestMigrateAllSweepsRowsWithUnsetSize(t *testing.T) {
	repo := newFakeSectionRepo()
	section := inlineSection("blockchain-fundamentals", 1, 1000)
	section.SizeBytes = 0
	repo.add(section)
	store := newFakeStore()
	svc := NewService(repo, store)

	migrated, results, err := svc.MigrateAll()
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)
	require.Len(t, results, 1)
	assert.Equal(t, "success", results[0].Status)

	swept, err := repo.GetByResourceID("blockchain-fundamentals-001")
	require.NoError(t, err)
	assert.False(t, swept.HasInlineBlob())
}

func TestMigrateIsIdempotent(t *testing.T) {
	repo := newFakeSectionRepo()
	repo.add(inlineSection("blockchain-fundamentals", 1, 1000))
	store := newFakeStore()
	svc := NewService(repo, store)

	migrated, _, err := svc.MigrateAll()
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	migrated, results, err := svc.MigrateAll()
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
	assert.Empty(t, results)
	assert.Equal(t, 1, store.uploads)
}

func TestMigrateRespectsThreshold(t *testing.T) {
	repo := newFakeSectionRepo()
	repo.add(inlineSection("blockchain-fundamentals", 1, 100*1024))
	repo.add(inlineSection("blockchain-fundamentals", 2, 800*1024))
	store := newFakeStore()
	svc := NewService(repo, store)

	migrated, _, err := svc.Optimize(0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	small, err := repo.GetByResourceID("blockchain-fundamentals-001")
	require.NoError(t, err)
	assert.True(t, small.HasInlineBlob())
}

func TestMigrateRecordsPerSectionErrors(t *testing.T) {
	repo := newFakeSectionRepo()
	repo.add(inlineSection("blockchain-fundamentals", 1, 1000))
	repo.add(inlineSection("blockchain-fundamentals", 2, 1000))
	store := newFakeStore()
	store.failKeys["pdfs/blockchain-fundamentals/blockchain-fundamentals-001.pdf"] = true
	svc := NewService(repo, store)

	migrated, results, err := svc.MigrateAll()
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)
	require.Len(t, results, 2)

	statuses := map[string]string{}
	for _, r := range results {
		statuses[r.ResourceID] = r.Status
	}
	assert.Equal(t, "error", statuses["blockchain-fundamentals-001"])
	assert.Equal(t, "success", statuses["blockchain-fundamentals-002"])

	// The failed row keeps its inline blob and stays servable.
	failed, err := repo.GetByResourceID("blockchain-fundamentals-001")
	require.NoError(t, err)
	assert.True(t, failed.HasInlineBlob())
}

func TestMigrateWithoutStore(t *testing.T) {
	svc := NewService(newFakeSectionRepo(), nil)
	_, _, err := svc.MigrateAll()
	assert.Error(t, err)
}

func TestCleanupOrphanedNeverDeletesReferenced(t *testing.T) {
	repo := newFakeSectionRepo()
	store := newFakeStore()
	svc := NewService(repo, store)

	repo.add(inlineSection("blockchain-fundamentals", 1, 1000))
	migrated, _, err := svc.MigrateAll()
	require.NoError(t, err)
	require.Equal(t, 1, migrated)

	store.objects["pdfs/blockchain-fundamentals/orphan-001.pdf"] = []byte("stale")
	store.objects["pdfs/old-book/orphan-002.pdf"] = []byte("stale")

	report, err := svc.CleanupOrphaned()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Orphaned)
	assert.Equal(t, 2, report.Cleaned)
	assert.Empty(t, report.Errors)

	assert.Contains(t, store.objects, "pdfs/blockchain-fundamentals/blockchain-fundamentals-001.pdf")
	assert.NotContains(t, store.objects, "pdfs/blockchain-fundamentals/orphan-001.pdf")
}

func TestCleanupOrphanedCollectsDeleteErrors(t *testing.T) {
	repo := newFakeSectionRepo()
	store := newFakeStore()
	store.objects["pdfs/old-book/orphan-001.pdf"] = []byte("stale")
	store.failKeys["pdfs/old-book/orphan-001.pdf"] = true
	svc := NewService(repo, store)

	report, err := svc.CleanupOrphaned()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Orphaned)
	assert.Equal(t, 0, report.Cleaned)
	assert.Len(t, report.Errors, 1)
}

func TestAnalyzeRecommendations(t *testing.T) {
	repo := newFakeSectionRepo()
	repo.add(inlineSection("blockchain-fundamentals", 1, 800*1024))
	svc := NewService(repo, newFakeStore())

	analysis, err := svc.Analyze()
	require.NoError(t, err)
	assert.Equal(t, int64(1), analysis.D1Blobs.Count)
	assert.Equal(t, int64(0), analysis.R2Objects.Count)
	require.Len(t, analysis.Recommendations, 2)
	assert.Contains(t, analysis.Recommendations[0], "Consider migrating inline blobs to R2")
	assert.Contains(t, analysis.Recommendations[1], "No R2 objects found")
}

func TestAnalyzeEmptyDatabase(t *testing.T) {
	svc := NewService(newFakeSectionRepo(), newFakeStore())

	analysis, err := svc.Analyze()
	require.NoError(t, err)
	assert.Empty(t, analysis.Recommendations)
}
