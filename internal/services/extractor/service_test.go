package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := common.NewDefaultConfig()
	return NewService(cfg.Documents, common.GetLogger())
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func writeDocx(t *testing.T, dir, name, documentXML string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func TestExtractText_UnsupportedExtension(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, t.TempDir(), "data.xyz", []byte("content"))

	_, err := svc.ExtractText(context.Background(), path)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindUnsupportedFileType))
	assert.Contains(t, err.Error(), ".xyz")
	assert.Contains(t, err.Error(), ".pdf")
}

func TestExtractText_MissingFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindFileAccess))
}

func TestExtractText_FileSizeExceeded(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Documents.MaxFileSizeMB = 1
	svc := NewService(cfg.Documents, common.GetLogger())

	path := writeFile(t, t.TempDir(), "big.txt", bytes.Repeat([]byte("x"), 2*1024*1024))

	_, err := svc.ExtractText(context.Background(), path)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindFileSizeExceeded))
}

func TestExtractWithMetadata_PlainText(t *testing.T) {
	svc := newTestService(t)
	content := "My résumé covers ten years of backend engineering experience,\n\n\n\n" +
		"including   distributed systems,  databases and cloud infrastructure work."
	path := writeFile(t, t.TempDir(), "resume.txt", []byte(content))

	text, md, err := svc.ExtractWithMetadata(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, md)

	assert.Contains(t, text, "distributed systems, databases")
	assert.NotContains(t, text, "\n\n\n")

	assert.Equal(t, "txt", md.FileType)
	assert.Equal(t, "text", md.ExtractionMethod)
	assert.Equal(t, "utf-8", md.Encoding)
	assert.Equal(t, "eng", md.Language)
	assert.Greater(t, md.WordCount, 10)
	assert.Greater(t, md.CharacterCount, 50)
	assert.Empty(t, md.Errors)
}

func TestExtractText_Latin1Fallback(t *testing.T) {
	svc := newTestService(t)
	// "café résumé" in latin-1, odd byte length so it cannot pass as UTF-16.
	raw := []byte("caf\xe9 r\xe9sum\xe9 x")
	path := writeFile(t, t.TempDir(), "legacy.txt", raw)

	text, md, err := svc.ExtractWithMetadata(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, text, "café")
	assert.Contains(t, text, "résumé")
	assert.NotEqual(t, "utf-8", md.Encoding)
}

func TestExtractWithMetadata_Markdown(t *testing.T) {
	svc := newTestService(t)
	content := `# Jane Doe

Senior backend engineer with a focus on data infrastructure.

## Skills

- Go
- PostgreSQL

| Company | Years |
|---------|-------|
| Acme    | 4     |

` + "```\nfunc main() { fmt.Println(\"hello, chunked world\") }\n```\n"
	path := writeFile(t, t.TempDir(), "resume.md", []byte(content))

	text, md, err := svc.ExtractWithMetadata(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Senior backend engineer")
	assert.Contains(t, text, "Go")
	assert.Contains(t, text, "Company | Years")
	assert.Contains(t, text, "Acme | 4")
	assert.Contains(t, text, "--- Code Block ---")
	assert.Contains(t, text, "--- End Code ---")

	assert.Equal(t, "markdown", md.ExtractionMethod)
	assert.True(t, md.HasTables)
	assert.Equal(t, 1, md.TableCount)
}

const docxFixture = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Professional Summary</w:t></w:r></w:p>
<w:p><w:r><w:t>Backend engineer since 2015.</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Role</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Jane</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Engineer</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body>
</w:document>`

func TestExtractWithMetadata_DOCX(t *testing.T) {
	svc := newTestService(t)
	path := writeDocx(t, t.TempDir(), "resume.docx", docxFixture)

	text, md, err := svc.ExtractWithMetadata(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, text, "Professional Summary")
	assert.Contains(t, text, "Backend engineer since 2015.")
	assert.Contains(t, text, "--- Table 1 ---")
	assert.Contains(t, text, "--- End Table ---")
	assert.Contains(t, text, "Jane")
	assert.Contains(t, text, "Engineer")

	// Paragraph stream comes before the table blocks.
	assert.Less(t, indexOf(text, "Backend engineer"), indexOf(text, "--- Table 1 ---"))

	assert.Equal(t, "docx", md.ExtractionMethod)
	assert.True(t, md.HasTables)
	assert.Equal(t, 1, md.TableCount)
}

func TestExtractText_CorruptedDOCX(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, t.TempDir(), "broken.docx", []byte("this is not a zip archive"))

	_, err := svc.ExtractText(context.Background(), path)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindCorruptedFile))
}

func writePDF(t *testing.T, dir, name string, protect bool) string {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	if protect {
		doc.SetProtection(0, "user-secret", "owner-secret")
	}
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(0, 10, "Resume of Jane Doe")
	doc.Ln(12)
	doc.Cell(0, 10, "Ten years of backend engineering experience.")

	path := filepath.Join(dir, name)
	require.NoError(t, doc.OutputFileAndClose(path))
	return path
}

func TestExtractWithMetadata_PDF(t *testing.T) {
	svc := newTestService(t)
	path := writePDF(t, t.TempDir(), "resume.pdf", false)

	text, md, err := svc.ExtractWithMetadata(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "backend engineering")
	assert.Equal(t, 1, md.PageCount)
	assert.False(t, md.IsPasswordProtected)
	assert.NotEmpty(t, md.ExtractionMethod)
}

func TestExtractWithMetadata_PasswordProtectedPDF(t *testing.T) {
	svc := newTestService(t)
	path := writePDF(t, t.TempDir(), "locked.pdf", true)

	_, md, err := svc.ExtractWithMetadata(context.Background(), path)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindPasswordProtected))
	require.NotNil(t, md)
	assert.True(t, md.IsPasswordProtected)
}

func TestSupportedExtensions(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, []string{".docx", ".md", ".pdf", ".txt"}, svc.SupportedExtensions())
}

func indexOf(s, sub string) int {
	return bytes.Index([]byte(s), []byte(sub))
}
