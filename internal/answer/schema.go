package answer

import (
	"strings"

	"github.com/basinworks/planextract/internal/section"
)

// requiredField names the one field every item of an array section must carry
// as a non-empty string. Optional fields are free-form; a missing or blank
// required field makes the item invalid. Each name must match the field the
// key's question instructs the model to emit, or conformant output would be
// rejected here.
var requiredField = map[section.Key]string{
	section.Goals:                    "description",
	section.BMPs:                     "name",
	section.Pollutants:               "name",
	section.ImplementationActivities: "description",
	section.MonitoringMetrics:        "parameter",
	section.OutreachActivities:       "description",
	section.GeographicAreas:          "name",
}

// ValidateSection checks a normalized array value against the key's item
// schema. Valid input passes through unchanged. On failure a repair pass drops
// nil items and strips nil/empty-string fields, then revalidates; if the
// repaired value still fails, an empty array is returned rather than a bad
// shape. Non-array keys pass through untouched.
func ValidateSection(key section.Key, value any) any {
	field, ok := requiredField[key]
	if !ok {
		return value
	}
	arr, ok := value.([]any)
	if !ok {
		return []any{}
	}

	if itemsValid(arr, field) {
		return arr
	}

	pruned := make([]any, 0, len(arr))
	for _, item := range arr {
		if item == nil {
			continue
		}
		m, ok := item.(map[string]any)
		if !ok {
			pruned = append(pruned, item)
			continue
		}
		clean := make(map[string]any, len(m))
		for k, v := range m {
			if v == nil {
				continue
			}
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			clean[k] = v
		}
		pruned = append(pruned, clean)
	}
	if itemsValid(pruned, field) {
		return pruned
	}

	// Last resort: empty set instead of bad shape.
	return []any{}
}

// itemsValid reports whether every item is an object whose required field is
// a non-blank string.
func itemsValid(arr []any, field string) bool {
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return false
		}
		s, ok := m[field].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}
