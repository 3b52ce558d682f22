package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRunRe = regexp.MustCompile(`[ \t]+`)

	// Control characters stripped from extracted text. Newlines and tabs
	// survive; tabs collapse with the whitespace pass instead.
	controlRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f]`)
)

// normalizeText canonicalizes extracted text: control characters removed,
// horizontal whitespace collapsed per line, at most two consecutive blank
// lines, and Unicode normalized to NFKC.
func normalizeText(text string) string {
	if text == "" {
		return ""
	}

	text = controlRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}

	return strings.TrimSpace(norm.NFKC.String(strings.Join(out, "\n")))
}
