package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// Code blocks longer than this render with delimiter markers so chunk
// boundaries do not silently split code from prose.
const codeBlockMarkerThreshold = 20

// extractMarkdown decodes the file like plain text, converts the markdown to
// HTML, then walks the element tree to produce readable text.
func (s *Service) extractMarkdown(_ context.Context, path string, md *models.ExtractionMetadata) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", models.NewFileAccessError(path, err)
	}

	source, err := decodeText(data, md)
	if err != nil {
		return "", models.NewTextExtractionError(path, md.Encoding, err)
	}

	var buf bytes.Buffer
	converter := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	if err := converter.Convert([]byte(source), &buf); err != nil {
		return "", models.NewTextExtractionError(path, "", fmt.Errorf("markdown conversion failed: %w", err))
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", models.NewTextExtractionError(path, "", err)
	}

	md.TableCount = doc.Find("table").Length()
	md.HasTables = md.TableCount > 0
	md.ImageCount = doc.Find("img").Length()
	md.HasImages = md.ImageCount > 0
	md.ExtractionMethod = "markdown"

	if n := doc.Find("pre").Length(); n > 0 {
		md.AddWarning(fmt.Sprintf("document contains %d code block(s)", n))
	}

	var b strings.Builder
	doc.Find("body").Children().Each(func(_ int, sel *goquery.Selection) {
		renderElement(sel, &b)
	})

	return b.String(), nil
}

// renderElement writes one HTML element as text, recursing into containers.
// Headings get surrounding blank lines so they survive as chunk anchors.
func renderElement(sel *goquery.Selection, b *strings.Builder) {
	switch goquery.NodeName(sel) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(sel.Text()))
		b.WriteString("\n\n")

	case "p":
		if t := strings.TrimSpace(sel.Text()); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}

	case "ul", "ol":
		sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			if t := strings.TrimSpace(li.Text()); t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		})

	case "pre":
		code := strings.TrimRight(sel.Text(), "\n")
		if len(code) > codeBlockMarkerThreshold {
			b.WriteString("\n--- Code Block ---\n")
			b.WriteString(code)
			b.WriteString("\n--- End Code ---\n")
		} else if code != "" {
			b.WriteString(code)
			b.WriteString("\n")
		}

	case "table":
		sel.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				b.WriteString(strings.Join(cells, " | "))
				b.WriteString("\n")
			}
		})

	case "blockquote", "div", "section", "article":
		sel.Children().Each(func(_ int, child *goquery.Selection) {
			renderElement(child, b)
		})

	default:
		if t := strings.TrimSpace(sel.Text()); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}
	}
}
