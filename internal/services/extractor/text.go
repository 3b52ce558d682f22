package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// minEncodingConfidence is the detection confidence below which a warning is
// recorded alongside the decoded text.
const minEncodingConfidence = 0.7

// extractPlainText reads a text file and decodes it with charset detection.
func (s *Service) extractPlainText(_ context.Context, path string, md *models.ExtractionMetadata) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", models.NewFileAccessError(path, err)
	}

	text, err := decodeText(data, md)
	if err != nil {
		return "", models.NewTextExtractionError(path, md.Encoding, err)
	}

	md.ExtractionMethod = "text"
	return text, nil
}

// decodeText decodes raw bytes to UTF-8: the detected charset first, then a
// fixed fallback chain, finally a lossy decode with replacement characters.
func decodeText(data []byte, md *models.ExtractionMetadata) (string, error) {
	if len(data) == 0 {
		md.Encoding = "utf-8"
		return "", nil
	}

	detected, confidence := detectEncoding(data)
	md.EncodingConfidence = confidence
	if detected != "" && confidence < minEncodingConfidence {
		md.AddWarning(fmt.Sprintf("low confidence (%.2f) in detected encoding %q", confidence, detected))
	}

	for _, name := range candidateEncodings(detected) {
		if text, ok := decodeAs(data, name); ok {
			md.Encoding = name
			return text, nil
		}
	}

	md.Encoding = "utf-8"
	md.AddWarning("decoded with replacement characters; some characters may have been lost")
	return strings.ToValidUTF8(string(data), "�"), nil
}

func detectEncoding(data []byte) (string, float64) {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "", 0
	}
	return strings.ToLower(result.Charset), float64(result.Confidence) / 100
}

// candidateEncodings puts the detected charset ahead of the fixed fallback
// chain, dropping the duplicate when they coincide.
func candidateEncodings(detected string) []string {
	fallbacks := []string{"utf-8", "utf-16", "latin-1", "cp1252", "ascii"}
	if detected == "" {
		return fallbacks
	}
	out := make([]string, 0, len(fallbacks)+1)
	out = append(out, detected)
	for _, name := range fallbacks {
		if name != detected {
			out = append(out, name)
		}
	}
	return out
}

func decodeAs(data []byte, name string) (string, bool) {
	switch name {
	case "utf-8":
		if utf8.Valid(data) {
			return string(data), true
		}
		return "", false
	case "ascii":
		for _, b := range data {
			if b >= utf8.RuneSelf {
				return "", false
			}
		}
		return string(data), true
	case "utf-16", "utf-16le":
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), data)
	case "utf-16be":
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), data)
	case "latin-1", "iso-8859-1":
		return decodeWith(charmap.ISO8859_1.NewDecoder(), data)
	case "cp1252", "windows-1252":
		return decodeWith(charmap.Windows1252.NewDecoder(), data)
	default:
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			return "", false
		}
		return decodeWith(enc.NewDecoder(), data)
	}
}

func decodeWith(dec *encoding.Decoder, data []byte) (string, bool) {
	out, err := dec.Bytes(data)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	return string(out), true
}
