package answer

import (
	"strings"
	"testing"

	"github.com/basinworks/planextract/internal/section"
)

func Test_ValidateSection_ValidPassesThrough(t *testing.T) {
	t.Parallel()
	in := []any{
		map[string]any{"description": "Reduce sediment", "targetDate": "2030"},
		map[string]any{"description": "Restore habitat"},
	}
	got := ValidateSection(section.Goals, in)
	arr, ok := got.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("got %#v", got)
	}
}

func Test_ValidateSection_PruneRepairsItems(t *testing.T) {
	t.Parallel()
	in := []any{
		nil,
		map[string]any{"name": "Riparian buffer", "description": "", "location": nil},
	}
	got := ValidateSection(section.BMPs, in)
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("got %#v", got)
	}
	item := arr[0].(map[string]any)
	if _, present := item["description"]; present {
		t.Error("empty string field should be stripped")
	}
	if _, present := item["location"]; present {
		t.Error("nil field should be stripped")
	}
	if item["name"] != "Riparian buffer" {
		t.Errorf("item = %#v", item)
	}
}

func Test_ValidateSection_UnrepairableYieldsEmpty(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   any
	}{
		{"missing required field", []any{map[string]any{"notname": "x"}}},
		{"blank required field", []any{map[string]any{"parameter": "  "}}},
		{"non-object item", []any{"just a string"}},
		{"not an array at all", "oops"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ValidateSection(section.MonitoringMetrics, tc.in)
			arr, ok := got.([]any)
			if !ok || len(arr) != 0 {
				t.Errorf("want empty array, got %#v", got)
			}
		})
	}
}

func Test_ValidateSection_NonArrayKeysUntouched(t *testing.T) {
	t.Parallel()
	identity := map[string]any{"planName": "Cedar Creek"}
	if got := ValidateSection(section.Identity, identity); got.(map[string]any)["planName"] != "Cedar Creek" {
		t.Errorf("identity changed: %#v", got)
	}
	if got := ValidateSection(section.Summary, "short"); got != "short" {
		t.Errorf("summary changed: %#v", got)
	}
}

func Test_ValidateSection_RequiredFieldPerKey(t *testing.T) {
	t.Parallel()
	cases := []struct {
		key   section.Key
		field string
	}{
		{section.Goals, "description"},
		{section.BMPs, "name"},
		{section.Pollutants, "name"},
		{section.ImplementationActivities, "description"},
		{section.MonitoringMetrics, "parameter"},
		{section.OutreachActivities, "description"},
		{section.GeographicAreas, "name"},
	}
	for _, tc := range cases {
		in := []any{map[string]any{tc.field: "value"}}
		got := ValidateSection(tc.key, in)
		if arr, ok := got.([]any); !ok || len(arr) != 1 {
			t.Errorf("key %s with %q set should validate, got %#v", tc.key, tc.field, got)
		}
	}
}

// Every required field must appear in the interface the key's question shows
// the model; otherwise instruction-conformant output would be rejected.
func Test_ValidateSection_RequiredFieldMatchesQuestion(t *testing.T) {
	t.Parallel()
	for key, field := range requiredField {
		if !strings.Contains(key.Question(), field+":") {
			t.Errorf("key %s requires %q but its question never asks for it", key, field)
		}
	}
}

func Test_ValidateSection_InstructionShapedOutputSurvives(t *testing.T) {
	t.Parallel()
	cases := []struct {
		key section.Key
		raw string
	}{
		{section.MonitoringMetrics, `{"monitoringMetrics":[{"parameter":"TSS","threshold":"25 mg/L","frequency":"monthly"}]}`},
		{section.ImplementationActivities, `{"implementationActivities":[{"id":1,"description":"Install fencing","timeline":"Years 1-3"}]}`},
		{section.OutreachActivities, `{"outreachActivities":[{"id":1,"description":"Field day","intendedAudience":"landowners"}]}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.key), func(t *testing.T) {
			t.Parallel()
			got := ValidateSection(tc.key, Normalize(tc.raw, tc.key))
			arr, ok := got.([]any)
			if !ok || len(arr) != 1 {
				t.Fatalf("model output matching the question was rejected: %#v", got)
			}
		})
	}
}
