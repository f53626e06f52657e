package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Options controls the chunking budgets. Zero values fall back to the
// package defaults.
type Options struct {
	// MaxTokens is the estimated token budget per chunk.
	MaxTokens int

	// OverlapTokens is the estimated token budget of trailing paragraphs
	// carried into the next chunk for context continuity.
	OverlapTokens int
}

// paragraphBreak matches one or more blank lines separating paragraphs.
var paragraphBreak = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)

// Paragraphs splits raw document text into paragraphs on blank lines.
// Used when the caller supplies raw text rather than a pre-segmented list.
func Paragraphs(text string) []string {
	parts := paragraphBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Chunk splits an ordered paragraph sequence into overlapping chunks whose
// estimated token count stays within opts.MaxTokens. Paragraphs accumulate in
// a running buffer; on overflow the buffer is flushed as one chunk and the
// next buffer is seeded with a trailing slice of the previous one whose
// estimate fits within opts.OverlapTokens. A single paragraph larger than the
// budget is hard-split at sentence boundaries and packed greedily, bypassing
// the overlap logic for that paragraph only.
//
// Output preserves document order, contains no empty chunks, and an empty
// input yields an empty result.
func Chunk(paragraphs []string, opts Options) []string {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	overlapTokens := opts.OverlapTokens
	if overlapTokens < 0 {
		overlapTokens = 0
	}

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		if c := strings.TrimSpace(strings.Join(current, "\n")); c != "" {
			chunks = append(chunks, c)
		}
	}

	for _, p := range paragraphs {
		t := Estimate(p)

		// Oversized paragraph: flush what we have to keep document order,
		// then sentence-split and pack greedily without overlap seeding.
		if t > maxTokens {
			flush()
			current = nil
			currentTokens = 0
			chunks = append(chunks, splitOversized(p, maxTokens)...)
			continue
		}

		if currentTokens+t > maxTokens {
			flush()
			if overlapTokens > 0 && len(chunks) > 0 {
				current, currentTokens = overlapTail(current, overlapTokens)
			} else {
				current = nil
				currentTokens = 0
			}
		}

		current = append(current, p)
		currentTokens += t
	}

	flush()
	return chunks
}

// overlapTail walks backward from the end of buf collecting paragraphs until
// adding the next one would exceed the overlap budget. It returns the kept
// tail in original order plus its token estimate.
func overlapTail(buf []string, budget int) ([]string, int) {
	var tail []string
	total := 0
	for i := len(buf) - 1; i >= 0; i-- {
		pt := Estimate(buf[i])
		if total+pt > budget {
			break
		}
		tail = append([]string{buf[i]}, tail...)
		total += pt
	}
	return tail, total
}

// splitOversized breaks a paragraph that alone exceeds the budget into
// sentence fragments and greedily packs them into chunks of at most maxTokens.
func splitOversized(p string, maxTokens int) []string {
	var out []string
	var acc string
	for _, s := range fragments(p, maxTokens) {
		st := Estimate(s + " ")
		if Estimate(acc)+st > maxTokens && strings.TrimSpace(acc) != "" {
			out = append(out, strings.TrimSpace(acc))
			acc = s
			continue
		}
		if acc == "" {
			acc = s
		} else {
			acc += " " + s
		}
	}
	if strings.TrimSpace(acc) != "" {
		out = append(out, strings.TrimSpace(acc))
	}
	return out
}

// fragments returns sentence fragments of p, slicing any fragment that alone
// exceeds the budget (no sentence boundary to cut at) into fixed-size pieces.
// Cuts back off to the nearest rune start so multi-byte characters are never
// split across fragments.
func fragments(p string, maxTokens int) []string {
	budgetChars := maxTokens * charsPerToken
	var out []string
	for _, s := range sentences(p) {
		for Estimate(s) > maxTokens {
			cut := budgetChars
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
			if cut == 0 {
				cut = budgetChars
			}
			out = append(out, s[:cut])
			s = s[cut:]
		}
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// sentences splits text after '.', '!', or '?' followed by whitespace.
// A text with no terminator comes back as a single element.
func sentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			out = append(out, s)
		}
		// Skip the whitespace run after the terminator.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}
