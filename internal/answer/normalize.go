// Package answer turns retrieved context into a validated section value: it
// builds the JSON-only extraction prompt, runs the primary/fallback model
// sequence, and coerces whatever comes back into the exact envelope shape the
// consuming UI expects. Model output is treated as hostile input — prose
// wrapping, wrong key names, and bare arrays all normalize to the same shape.
package answer

import (
	"encoding/json"
	"strings"

	"github.com/basinworks/planextract/internal/section"
)

// Normalize coerces raw model output into the expected value for key. It
// never fails: output that cannot be salvaged normalizes to the key's empty
// value. Precedence:
//
//  1. Parse the whole string as JSON. A bare array is taken as the value for
//     an array key; an object is searched for the key directly, by alias, and
//     one nested object level deep.
//  2. Slice from the first '{' to the last '}' and retry the object search,
//     which recovers JSON wrapped in prose.
//  3. Fall back to the key's empty value.
func Normalize(raw string, key section.Key) any {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		switch v := parsed.(type) {
		case []any:
			return coerceShape(key, v)
		case map[string]any:
			return coerceShape(key, findByAlias(v, key))
		}
	}

	// Brace-slice fallback for prose-wrapped JSON.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err == nil {
			return coerceShape(key, findByAlias(obj, key))
		}
	}

	return coerceShape(key, nil)
}

// Envelope wraps a normalized value in the {canonicalKey: value} object.
func Envelope(key section.Key, value any) map[string]any {
	return map[string]any{string(key): value}
}

// findByAlias locates the value for key in a possibly messy object: direct
// properties are matched through the alias table first, then the properties of
// each nested object one level deep. Returns nil when nothing matches.
func findByAlias(obj map[string]any, key section.Key) any {
	want := section.Aliases(key)

	for k, v := range obj {
		if want[section.NormalizeName(k)] {
			return v
		}
	}
	for _, v := range obj {
		nested, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k2, v2 := range nested {
			if want[section.NormalizeName(k2)] {
				return v2
			}
		}
	}
	return nil
}

// coerceShape forces value into the shape the key requires: array keys wrap
// single items and replace nil with an empty array, identity must be an
// object, and summary must be a string (an object's "text" field is used, or
// the object is re-serialized).
func coerceShape(key section.Key, value any) any {
	if key.IsArray() {
		switch v := value.(type) {
		case []any:
			return v
		case nil:
			return []any{}
		default:
			return []any{v}
		}
	}

	switch key {
	case section.Identity:
		if m, ok := value.(map[string]any); ok {
			return m
		}
		return map[string]any{}

	case section.Summary:
		switch v := value.(type) {
		case string:
			return v
		case map[string]any:
			if text, ok := v["text"].(string); ok {
				return text
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return ""
			}
			return string(raw)
		default:
			return ""
		}
	}

	return value
}

// isUsable reports whether a normalized value carries actual content: a
// non-empty array, a non-empty identity object, or a non-blank summary. The
// synthesizer retries while this is false.
func isUsable(key section.Key, value any) bool {
	if key.IsArray() {
		arr, ok := value.([]any)
		return ok && len(arr) > 0
	}
	switch key {
	case section.Identity:
		m, ok := value.(map[string]any)
		return ok && len(m) > 0
	case section.Summary:
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	}
	return value != nil
}
