package answer

import (
	"fmt"
	"strings"

	"github.com/basinworks/planextract/internal/section"
)

// BuildPrompt assembles the JSON-only extraction prompt for a section. The
// prompt is deterministic for a given (key, question, context), which together
// with temperature 0 keeps repeated extractions reproducible.
func BuildPrompt(key section.Key, question string, context []string) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are extracting data for the %q section from a watershed plan.
Return ONLY strict JSON, with this exact top-level shape:

{ %q: <array or object exactly as required by the question> }

No explanations, no markdown, no comments.

Context:
%s

Question:
%s
`, string(key), string(key), strings.Join(context, "\n\n"), question))
}
