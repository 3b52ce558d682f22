package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// docxBody holds the document content split into the flowing paragraph
// stream and the tables encountered along the way.
type docxBody struct {
	paragraphs []string
	tables     [][][]string
}

// extractDOCX extracts text from a DOCX archive: paragraphs in document
// order first, then each table rendered as a delimited block.
func (s *Service) extractDOCX(_ context.Context, path string, md *models.ExtractionMetadata) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", models.NewCorruptedFileError(path, fmt.Sprintf("not a valid DOCX archive: %v", err))
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", models.NewCorruptedFileError(path, "missing word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", models.NewDOCXExtractionError(path, err)
	}
	defer rc.Close()

	body, err := parseDOCXBody(rc)
	if err != nil {
		return "", models.NewDOCXExtractionError(path, err)
	}

	md.TableCount = len(body.tables)
	md.HasTables = md.TableCount > 0
	md.ExtractionMethod = "docx"

	var b strings.Builder
	for _, p := range body.paragraphs {
		b.WriteString(p)
		b.WriteString("\n")
	}
	for i, t := range body.tables {
		b.WriteString(fmt.Sprintf("\n--- Table %d ---\n", i+1))
		b.WriteString(renderDocxTable(t))
		b.WriteString("--- End Table ---\n")
	}

	return b.String(), nil
}

// parseDOCXBody walks the WordprocessingML token stream. Only w:t character
// data counts as text; tabs and breaks map to whitespace. Nested tables are
// flattened into the enclosing cell.
func parseDOCXBody(r io.Reader) (*docxBody, error) {
	dec := xml.NewDecoder(r)
	body := &docxBody{}

	var (
		para       strings.Builder
		cell       strings.Builder
		curRow     []string
		curTable   [][]string
		tableDepth int
		inText     bool
	)

	write := func(s string) {
		if tableDepth > 0 {
			cell.WriteString(s)
		} else {
			para.WriteString(s)
		}
	}
	flushPara := func() {
		if p := strings.TrimSpace(para.String()); p != "" {
			body.paragraphs = append(body.paragraphs, p)
		}
		para.Reset()
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					curTable = nil
				}
			case "tr":
				if tableDepth == 1 {
					curRow = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "t":
				inText = true
			case "tab":
				write("\t")
			case "br", "cr":
				write("\n")
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDepth == 0 {
					flushPara()
				} else {
					cell.WriteString("\n")
				}
			case "tc":
				if tableDepth == 1 {
					// Cell-internal line breaks flatten to spaces.
					curRow = append(curRow, strings.Join(strings.Fields(cell.String()), " "))
				}
			case "tr":
				if tableDepth == 1 && len(curRow) > 0 {
					curTable = append(curTable, curRow)
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(curTable) > 0 {
					body.tables = append(body.tables, curTable)
				}
			}

		case xml.CharData:
			if inText {
				write(string(t))
			}
		}
	}

	flushPara()
	return body, nil
}

// renderDocxTable renders rows as an ASCII table, padding ragged rows to the
// widest row so every cell lands in a column.
func renderDocxTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	padded := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		padded[i] = row
	}

	var buf bytes.Buffer
	tw := tablewriter.NewWriter(&buf)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader(padded[0])
	for _, row := range padded[1:] {
		tw.Append(row)
	}
	tw.Render()

	return buf.String()
}
