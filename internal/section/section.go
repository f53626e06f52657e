// Package section defines the canonical extraction keys for watershed-plan
// documents: the fixed set of sections a caller may ask for, the JSON shape
// each section's answer must have, and the alias/question/anchor tables used
// by retrieval and normalization. The key set is closed — asking for anything
// outside it is a caller error, not a degraded answer.
package section

import (
	"errors"
	"fmt"
)

// Key identifies one canonical extraction target.
type Key string

const (
	// Identity is the plan identity and metadata section (object-shaped).
	Identity Key = "identity"
	// Pollutants lists pollutants with loads/targets (array-shaped).
	Pollutants Key = "pollutants"
	// Goals lists plan goals/objectives (array-shaped).
	Goals Key = "goals"
	// BMPs lists best management practices (array-shaped).
	BMPs Key = "bmps"
	// ImplementationActivities lists planned actions and timing (array-shaped).
	ImplementationActivities Key = "implementationActivities"
	// MonitoringMetrics lists monitoring parameters and criteria (array-shaped).
	MonitoringMetrics Key = "monitoringMetrics"
	// OutreachActivities lists outreach/education actions (array-shaped).
	OutreachActivities Key = "outreachActivities"
	// GeographicAreas lists named areas and sizes (array-shaped).
	GeographicAreas Key = "geographicAreas"
	// Summary is the plan summary section (string-shaped).
	Summary Key = "summary"
)

// Shape declares the JSON shape an answer value must have for a given key.
type Shape int

const (
	// ShapeArray means the value is a JSON array of records.
	ShapeArray Shape = iota
	// ShapeObject means the value is a single JSON object.
	ShapeObject
	// ShapeString means the value is a plain string.
	ShapeString
)

// ErrUnknownKey is returned when a caller asks for a key outside the
// canonical set. It maps to a 4xx response at the API boundary.
var ErrUnknownKey = errors.New("section: unknown canonical key")

// all is the closed set of canonical keys in stable order.
var all = []Key{
	Identity,
	Pollutants,
	Goals,
	BMPs,
	ImplementationActivities,
	MonitoringMetrics,
	OutreachActivities,
	GeographicAreas,
	Summary,
}

// shapes maps each canonical key to its declared answer shape.
var shapes = map[Key]Shape{
	Identity:                 ShapeObject,
	Pollutants:               ShapeArray,
	Goals:                    ShapeArray,
	BMPs:                     ShapeArray,
	ImplementationActivities: ShapeArray,
	MonitoringMetrics:        ShapeArray,
	OutreachActivities:       ShapeArray,
	GeographicAreas:          ShapeArray,
	Summary:                  ShapeString,
}

// All returns the canonical keys in stable order. The returned slice is a
// copy; callers may reorder it freely.
func All() []Key {
	out := make([]Key, len(all))
	copy(out, all)
	return out
}

// Parse validates s against the canonical set and returns the typed key.
// Unknown values return ErrUnknownKey wrapped with the offending input.
func Parse(s string) (Key, error) {
	k := Key(s)
	if _, ok := shapes[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}
	return k, nil
}

// ShapeOf returns the declared answer shape for k. Unknown keys report
// ShapeArray — callers are expected to Parse first.
func (k Key) ShapeOf() Shape {
	if s, ok := shapes[k]; ok {
		return s
	}
	return ShapeArray
}

// IsArray reports whether k expects an array-shaped answer.
func (k Key) IsArray() bool { return k.ShapeOf() == ShapeArray }

// EmptyValue returns the key's declared empty value: [] for array keys,
// {} for identity, "" for summary. This is the value the normalizer
// substitutes when nothing parseable is found.
func (k Key) EmptyValue() any {
	switch k.ShapeOf() {
	case ShapeObject:
		return map[string]any{}
	case ShapeString:
		return ""
	default:
		return []any{}
	}
}
