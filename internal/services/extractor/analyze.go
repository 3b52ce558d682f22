package extractor

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/clipperhouse/uax29/v2/words"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

const (
	// languageMinChars is the minimum text length before language detection
	// is attempted; shorter samples are too noisy to classify.
	languageMinChars = 50

	// languageSampleSize caps the sample fed to the detector.
	languageSampleSize = 1000
)

// analyzeText fills in the statistical metadata for normalized text.
func (s *Service) analyzeText(text string, md *models.ExtractionMetadata) {
	md.CharacterCount = len([]rune(text))
	if text != "" {
		md.LineCount = strings.Count(text, "\n") + 1
	}
	md.WordCount = countWords(text)
	md.Language = detectLanguage(text, md)
}

// countWords counts Unicode word-boundary tokens that carry at least one
// letter or digit, so punctuation runs are not counted as words.
func countWords(text string) int {
	count := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		if tokenHasAlnum(tokens.Value()) {
			count++
		}
	}
	if count == 0 {
		return naiveWordCount(text)
	}
	return count
}

// naiveWordCount splits on whitespace, counting alphanumeric tokens only.
func naiveWordCount(text string) int {
	count := 0
	for _, token := range strings.Fields(text) {
		if tokenHasAlnum(token) {
			count++
		}
	}
	return count
}

func tokenHasAlnum(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// detectLanguage classifies the document language from a bounded sample,
// reporting "unknown" when the text is too short or detection fails.
func detectLanguage(text string, md *models.ExtractionMetadata) string {
	runes := []rune(text)
	if len(runes) <= languageMinChars {
		return "unknown"
	}
	if len(runes) > languageSampleSize {
		runes = runes[:languageSampleSize]
	}

	info := whatlanggo.Detect(string(runes))
	code := whatlanggo.LangToString(info.Lang)
	if code == "" {
		md.AddWarning("language detection failed")
		return "unknown"
	}
	return code
}
