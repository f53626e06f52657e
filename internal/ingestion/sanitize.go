package ingestion

import (
	"strings"
	"unicode"
)

// Sanitize normalizes raw extracted text before chunking: line endings become
// \n, control characters other than \n and \t are dropped (PDF extractors and
// OCR passes leave form feeds and null bytes behind), and each line loses its
// trailing whitespace. Blank-line structure is preserved so paragraph
// derivation still works.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || r == '�' {
			continue
		}
		b.WriteRune(r)
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
