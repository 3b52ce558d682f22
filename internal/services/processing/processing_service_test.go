package processing

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/models"
)

type stubScanner struct {
	docs []*models.DocumentDescriptor
	err  error
}

var _ interfaces.DocumentScanner = (*stubScanner)(nil)

func (s *stubScanner) ScanDocuments(_ context.Context) ([]*models.DocumentDescriptor, error) {
	return s.docs, s.err
}

func (s *stubScanner) IsSupportedFile(_ string) bool { return true }

func (s *stubScanner) ValidateUpload(_ string, _ []byte) []models.UploadValidationError {
	return nil
}

func (s *stubScanner) SaveUpload(_ context.Context, _ string, _ io.Reader) (*models.UploadedFileInfo, error) {
	return nil, nil
}

func (s *stubScanner) UploadStats(_ context.Context) (*models.UploadStats, error) {
	return &models.UploadStats{}, nil
}

type extraction struct {
	text     string
	metadata *models.ExtractionMetadata
	err      error
}

type stubExtractor struct {
	byPath map[string]extraction
}

var _ interfaces.TextExtractor = (*stubExtractor)(nil)

func (s *stubExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	text, _, err := s.ExtractWithMetadata(ctx, filePath)
	return text, err
}

func (s *stubExtractor) ExtractWithMetadata(_ context.Context, filePath string) (string, *models.ExtractionMetadata, error) {
	ex, ok := s.byPath[filePath]
	if !ok {
		return "", nil, fmt.Errorf("unexpected path %s", filePath)
	}
	return ex.text, ex.metadata, ex.err
}

func (s *stubExtractor) SupportedExtensions() []string {
	return []string{".docx", ".md", ".pdf", ".txt"}
}

type indexingStore struct {
	mu     sync.Mutex
	added  []string
	failOn map[string]bool
}

var _ interfaces.VectorStore = (*indexingStore)(nil)

func (s *indexingStore) AddDocument(_ context.Context, _, documentName, _ string, _ map[string]any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[documentName] {
		return false, fmt.Errorf("index write failed")
	}
	s.added = append(s.added, documentName)
	return true, nil
}

func (s *indexingStore) SearchSimilar(_ context.Context, _ string, _ int, _ map[string]any) ([]models.SearchResult, error) {
	return nil, nil
}

func (s *indexingStore) DeleteDocument(_ context.Context, _ string) (bool, error) { return true, nil }

func (s *indexingStore) CollectionStats(_ context.Context) *models.CollectionStats {
	return &models.CollectionStats{}
}

func (s *indexingStore) HealthCheck(_ context.Context) *models.HealthStatus {
	return &models.HealthStatus{}
}

func (s *indexingStore) ClearCollection(_ context.Context) (bool, error) { return true, nil }

func (s *indexingStore) Close() error { return nil }

func metadataFor(fileType string, words, chars int) *models.ExtractionMetadata {
	md := models.NewExtractionMetadata("", 0)
	md.FileType = fileType
	md.WordCount = words
	md.CharacterCount = chars
	return md
}

func newBatchService(scanner interfaces.DocumentScanner, extractor interfaces.TextExtractor, store interfaces.VectorStore) *Service {
	cfg := common.NewDefaultConfig()
	cfg.Processing.Concurrency = 2
	return NewService(cfg, scanner, extractor, store, common.GetLogger())
}

func TestProcessAllDocuments_OneFailureDoesNotAbortBatch(t *testing.T) {
	scanner := &stubScanner{}
	extractor := &stubExtractor{byPath: map[string]extraction{}}
	for i := 1; i <= 5; i++ {
		path := fmt.Sprintf("/docs/doc%d.txt", i)
		scanner.docs = append(scanner.docs, &models.DocumentDescriptor{
			ID:       fmt.Sprintf("doc_%d", i),
			Filename: fmt.Sprintf("doc%d.txt", i),
			FilePath: path,
		})
		extractor.byPath[path] = extraction{
			text:     "some extracted text",
			metadata: metadataFor("txt", 3, 19),
		}
	}
	extractor.byPath["/docs/doc3.txt"] = extraction{
		err: models.NewCorruptedFileError("/docs/doc3.txt", "truncated stream"),
	}
	store := &indexingStore{}

	result, err := newBatchService(scanner, extractor, store).ProcessAllDocuments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalDocuments)
	assert.Equal(t, 4, result.ProcessedCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.FailedDocuments, 1)
	assert.Equal(t, "doc3.txt", result.FailedDocuments[0].Filename)
	assert.Equal(t, string(models.KindCorruptedFile), result.FailedDocuments[0].Kind)

	assert.Len(t, store.added, 4)
	assert.NotContains(t, store.added, "doc3.txt")

	assert.Equal(t, 12, result.TotalWords)
	assert.Equal(t, 76, result.TotalCharacters)
	require.Contains(t, result.FileTypes, "txt")
	assert.Equal(t, 4, result.FileTypes["txt"].Count)
	assert.Equal(t, 12, result.FileTypes["txt"].Words)
}

func TestProcessAllDocuments_EmptyTextMarksFailure(t *testing.T) {
	scanner := &stubScanner{docs: []*models.DocumentDescriptor{
		{ID: "doc_1", Filename: "blank.txt", FilePath: "/docs/blank.txt"},
	}}
	extractor := &stubExtractor{byPath: map[string]extraction{
		"/docs/blank.txt": {text: "   \n ", metadata: metadataFor("txt", 0, 5)},
	}}

	result, err := newBatchService(scanner, extractor, &indexingStore{}).ProcessAllDocuments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.ProcessedCount)
	require.Len(t, result.FailedDocuments, 1)
	assert.Equal(t, string(models.KindEmptyDocument), result.FailedDocuments[0].Kind)
}

func TestProcessAllDocuments_MetadataModeErrorSurfaces(t *testing.T) {
	md := metadataFor("pdf", 0, 0)
	md.AddError("render engine crashed")
	scanner := &stubScanner{docs: []*models.DocumentDescriptor{
		{ID: "doc_1", Filename: "odd.pdf", FilePath: "/docs/odd.pdf"},
	}}
	extractor := &stubExtractor{byPath: map[string]extraction{
		"/docs/odd.pdf": {text: "", metadata: md},
	}}

	result, err := newBatchService(scanner, extractor, &indexingStore{}).ProcessAllDocuments(context.Background())
	require.NoError(t, err)

	require.Len(t, result.FailedDocuments, 1)
	assert.Equal(t, "render engine crashed", result.FailedDocuments[0].Error)
	assert.Equal(t, string(models.KindDocumentProcessing), result.FailedDocuments[0].Kind)
}

func TestProcessAllDocuments_IndexingFailureKeepsDocumentStats(t *testing.T) {
	scanner := &stubScanner{docs: []*models.DocumentDescriptor{
		{ID: "doc_1", Filename: "a.txt", FilePath: "/docs/a.txt"},
		{ID: "doc_2", Filename: "b.txt", FilePath: "/docs/b.txt"},
	}}
	extractor := &stubExtractor{byPath: map[string]extraction{
		"/docs/a.txt": {text: "alpha text", metadata: metadataFor("txt", 2, 10)},
		"/docs/b.txt": {text: "beta text", metadata: metadataFor("txt", 2, 9)},
	}}
	store := &indexingStore{failOn: map[string]bool{"a.txt": true}}

	result, err := newBatchService(scanner, extractor, store).ProcessAllDocuments(context.Background())
	require.NoError(t, err)

	// Extraction succeeded for both; the index write problem is logged, not fatal.
	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, []string{"b.txt"}, store.added)
}

func TestProcessAllDocuments_EmptyFolder(t *testing.T) {
	result, err := newBatchService(&stubScanner{}, &stubExtractor{}, &indexingStore{}).ProcessAllDocuments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalDocuments)
	assert.Empty(t, result.FailedDocuments)
}

func TestProcessAllDocuments_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := &stubScanner{docs: []*models.DocumentDescriptor{
		{ID: "doc_1", Filename: "a.txt", FilePath: "/docs/a.txt"},
	}}

	result, err := newBatchService(scanner, &stubExtractor{byPath: map[string]extraction{}}, &indexingStore{}).ProcessAllDocuments(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.ProcessedCount)
}
