package answer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/basinworks/planextract/internal/section"
)

func Test_Normalize_CleanObject(t *testing.T) {
	t.Parallel()
	got := Normalize(`{"goals":[{"description":"Reduce sediment"}]}`, section.Goals)
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("got %#v", got)
	}
}

func Test_Normalize_BareArray(t *testing.T) {
	t.Parallel()
	got := Normalize(`[{"name":"Phosphorus"},{"name":"Nitrogen"}]`, section.Pollutants)
	arr, ok := got.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("bare array should become the value, got %#v", got)
	}
}

func Test_Normalize_AliasKey(t *testing.T) {
	t.Parallel()
	// "goal" is an alias of goals; "objectives" too.
	for _, raw := range []string{
		`{"goal":[{"description":"x"}]}`,
		`{"objectives":[{"description":"x"}]}`,
		`{"Goal Statements":[{"description":"x"}]}`,
	} {
		got := Normalize(raw, section.Goals)
		arr, ok := got.([]any)
		if !ok || len(arr) != 1 {
			t.Errorf("Normalize(%q) = %#v", raw, got)
		}
	}
}

func Test_Normalize_NestedOneLevel(t *testing.T) {
	t.Parallel()
	got := Normalize(`{"result":{"bmps":[{"name":"Riparian buffer"}]}}`, section.BMPs)
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("nested value not found, got %#v", got)
	}
}

func Test_Normalize_ProseWrappedJSON(t *testing.T) {
	t.Parallel()
	raw := `Sure! Here is the data: {"goal": [{"description": "Reduce phosphorus by 40%"}]}`
	got := Normalize(raw, section.Goals)
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("prose-wrapped JSON not recovered, got %#v", got)
	}
	item := arr[0].(map[string]any)
	if item["description"] != "Reduce phosphorus by 40%" {
		t.Errorf("item = %#v", item)
	}
}

func Test_Normalize_SingleItemWrapped(t *testing.T) {
	t.Parallel()
	got := Normalize(`{"pollutants":{"name":"Sediment"}}`, section.Pollutants)
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("single object should be wrapped, got %#v", got)
	}
}

func Test_Normalize_GarbageYieldsEmptyShape(t *testing.T) {
	t.Parallel()
	for _, key := range section.All() {
		got := Normalize("I could not find anything relevant.", key)
		want := key.EmptyValue()
		if !reflect.DeepEqual(got, want) {
			t.Errorf("key %s: got %#v, want %#v", key, got, want)
		}
	}
}

func Test_Normalize_EnvelopeShapeForAllKeys(t *testing.T) {
	t.Parallel()
	raws := []string{
		`{}`,
		`[]`,
		`null`,
		`"just a string"`,
		`{"unrelated":"value"}`,
		`prose without any json at all`,
		`{"goals":[{"description":"x"}],"extra":1}`,
	}
	for _, key := range section.All() {
		for _, raw := range raws {
			value := Normalize(raw, key)
			env := Envelope(key, value)
			if len(env) != 1 {
				t.Fatalf("envelope must have exactly one key, got %v", env)
			}
			v, ok := env[string(key)]
			if !ok {
				t.Fatalf("envelope missing %q", key)
			}
			switch key.ShapeOf() {
			case section.ShapeArray:
				if _, ok := v.([]any); !ok {
					t.Errorf("key %s raw %q: want array, got %T", key, raw, v)
				}
			case section.ShapeObject:
				if _, ok := v.(map[string]any); !ok {
					t.Errorf("key %s raw %q: want object, got %T", key, raw, v)
				}
			case section.ShapeString:
				if _, ok := v.(string); !ok {
					t.Errorf("key %s raw %q: want string, got %T", key, raw, v)
				}
			}
		}
	}
}

func Test_Normalize_Idempotent(t *testing.T) {
	t.Parallel()
	raw := `{"summary":"The plan targets phosphorus reduction."}`
	first := Normalize(raw, section.Summary)

	again, err := json.Marshal(Envelope(section.Summary, first))
	if err != nil {
		t.Fatal(err)
	}
	second := Normalize(string(again), section.Summary)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent: %#v vs %#v", first, second)
	}
}

func Test_Normalize_SummaryObjectTextField(t *testing.T) {
	t.Parallel()
	got := Normalize(`{"summary":{"text":"Short version."}}`, section.Summary)
	if got != "Short version." {
		t.Errorf("got %#v", got)
	}

	// Object without text serializes rather than vanishing.
	got = Normalize(`{"summary":{"para":"x"}}`, section.Summary)
	s, ok := got.(string)
	if !ok || s == "" {
		t.Errorf("got %#v", got)
	}
}

func Test_Normalize_IdentityShapes(t *testing.T) {
	t.Parallel()
	got := Normalize(`{"metadata":{"planName":"Cedar Creek"}}`, section.Identity)
	m, ok := got.(map[string]any)
	if !ok || m["planName"] != "Cedar Creek" {
		t.Fatalf("got %#v", got)
	}

	// Non-object identity degrades to an empty object.
	got = Normalize(`{"identity":"Cedar Creek"}`, section.Identity)
	m, ok = got.(map[string]any)
	if !ok || len(m) != 0 {
		t.Errorf("got %#v", got)
	}
}
