package recipe

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// decode builds a raw response the way the remote client does.
func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return v
}

func TestNormalize_ImageCaption(t *testing.T) {
	raw := decode(t, `[{"image":"u1","caption":"Name1\nmore"},{"image":{"url":"u2"},"caption":"Name2"}]`)

	got := Normalize(raw)

	want := []Recommendation{
		{RecipeName: "Name1", ImageURL: "u1", IngredientsList: "Name1\nmore"},
		{RecipeName: "Name2", ImageURL: "u2", IngredientsList: "Name2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ShapeImageCaption, Classify(raw))
}

func TestNormalize_ImageCaptionWithoutURL(t *testing.T) {
	raw := decode(t, `[{"image":{"path":"/tmp/x.png"},"caption":"\nonly body"}]`)

	got := Normalize(raw)

	want := []Recommendation{{RecipeName: "Recipe 1", ImageURL: "", IngredientsList: "\nonly body"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ImageCaptionIgnoresNonURLImages(t *testing.T) {
	tests := []struct {
		name  string
		image any
	}{
		{name: "number", image: 5.0},
		{name: "bool", image: true},
		{name: "list", image: []any{"a.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []any{map[string]any{"image": tt.image, "caption": "Soup"}}

			got := Normalize(raw)

			assert.Equal(t, []Recommendation{{RecipeName: "Soup", IngredientsList: "Soup"}}, got)
			assert.Equal(t, ShapeImageCaption, Classify(raw))
		})
	}
}

func TestNormalize_ObjectImagePassesThrough(t *testing.T) {
	raw := []any{map[string]any{"name": "Stew", "image": 5.0}}

	got := Normalize(raw)

	assert.Equal(t, []Recommendation{{RecipeName: "Stew", ImageURL: "5"}}, got)
	assert.Equal(t, ShapeObjects, Classify(raw))
}

func TestNormalize_TwoPairsReadAsParallelArrays(t *testing.T) {
	raw := decode(t, `[["A","u1"],["B","u2"]]`)

	got := Normalize(raw)

	// Both items are lists, so the parallel-arrays rule claims the input
	// before the pair rule is tried.
	assert.Equal(t, ShapeParallelArrays, Classify(raw))
	want := []Recommendation{
		{RecipeName: "A", ImageURL: "B"},
		{RecipeName: "u1", ImageURL: "u2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_MixedListsFallBack(t *testing.T) {
	assert.Equal(t, ShapeFallback, Classify([]any{"not a pair", []any{"B", "u2"}}))
	assert.Equal(t, ShapeFallback, Classify([]any{[]any{"A", "u1", "extra"}, "x"}))
}

func TestPairRule(t *testing.T) {
	pairs := []any{
		[]any{"A", "u1"},
		[]any{0.0, nil, "ignored"},
	}
	assert.True(t, allPairs(pairs))
	assert.False(t, allPairs([]any{[]any{"short"}}))

	got := buildPairs(pairs)

	want := []Recommendation{
		{RecipeName: "A", ImageURL: "u1"},
		{RecipeName: "Recipe 2", ImageURL: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buildPairs() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ParallelArrays(t *testing.T) {
	raw := decode(t, `[["A","B","C"],["u1","u2"]]`)

	got := Normalize(raw)

	want := []Recommendation{
		{RecipeName: "A", ImageURL: "u1"},
		{RecipeName: "B", ImageURL: "u2"},
		{RecipeName: "C", ImageURL: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ParallelArraysNamesAndURLs(t *testing.T) {
	raw := decode(t, `[["A","B"],["u1","u2"]]`)

	got := Normalize(raw)

	want := []Recommendation{
		{RecipeName: "A", ImageURL: "u1"},
		{RecipeName: "B", ImageURL: "u2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Objects(t *testing.T) {
	raw := decode(t, `[
		{"recipe_name":"Soup","image_url":"s.png","ingredients_list":"water, salt"},
		{"title":"Pie","image":{"url":"p.png"},"ingredients":"flour"},
		{"name":"","calories":120}
	]`)

	got := Normalize(raw)

	want := []Recommendation{
		{RecipeName: "Soup", ImageURL: "s.png", IngredientsList: "water, salt"},
		{RecipeName: "Pie", ImageURL: "p.png", IngredientsList: "flour"},
		{RecipeName: "Recipe 3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ShapeObjects, Classify(raw))
}

func TestNormalize_ImageCaptionBeatsObjects(t *testing.T) {
	raw := decode(t, `[{"image":"u1","caption":"Cake","recipe_name":"ignored"}]`)

	got := Normalize(raw)

	assert.Equal(t, "Cake", got[0].RecipeName)
	assert.Equal(t, ShapeImageCaption, Classify(raw))
}

func TestNormalize_WrapperIsTransparent(t *testing.T) {
	inputs := []string{
		`[["A","B"],["u1","u2"]]`,
		`[{"image":"u1","caption":"N"}]`,
		`[{"name":"x"}]`,
		`"plain"`,
		`42`,
		`{"other":1}`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			x := decode(t, in)
			wrapped := map[string]any{"data": x}
			if _, isList := x.([]any); !isList {
				// Only a list-valued data field is unwrapped.
				assert.Equal(t, ShapeFallback, Classify(wrapped))
				return
			}
			if diff := cmp.Diff(Normalize(x), Normalize(wrapped)); diff != "" {
				t.Errorf("wrapped result differs (-plain +wrapped):\n%s", diff)
			}
		})
	}
}

func TestNormalize_SingletonListUnwrap(t *testing.T) {
	inner := decode(t, `[{"image":"a","caption":"A"},{"image":"b","caption":"B"},{"image":"c","caption":"C"}]`)
	outer := []any{inner}

	if diff := cmp.Diff(Normalize(inner), Normalize(outer)); diff != "" {
		t.Errorf("singleton unwrap differs (-inner +outer):\n%s", diff)
	}
}

func TestNormalize_GradioGalleryEnvelope(t *testing.T) {
	raw := decode(t, `{"data":[[
		{"image":{"path":"/tmp/1.jpg","url":"https://x.hf.space/file=/tmp/1.jpg"},"caption":"Tomato Soup\ntomato, basil"},
		{"image":{"path":"/tmp/2.jpg","url":"https://x.hf.space/file=/tmp/2.jpg"},"caption":"Greek Salad"}
	]]}`)

	got := Normalize(raw)

	want := []Recommendation{
		{RecipeName: "Tomato Soup", ImageURL: "https://x.hf.space/file=/tmp/1.jpg", IngredientsList: "Tomato Soup\ntomato, basil"},
		{RecipeName: "Greek Salad", ImageURL: "https://x.hf.space/file=/tmp/2.jpg", IngredientsList: "Greek Salad"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Fallback(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "string", raw: "oops", want: `"oops"`},
		{name: "number", raw: 3.5, want: `3.5`},
		{name: "object without data list", raw: map[string]any{"error": "x"}, want: `{"error":"x"}`},
		{name: "mixed list", raw: []any{"a", 1.0}, want: `["a",1]`},
		{name: "list with null", raw: []any{nil}, want: `[null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, []Recommendation{{RecipeName: tt.want}}, got)
			assert.Equal(t, ShapeFallback, Classify(tt.raw))
		})
	}
}

func TestNormalize_NeverEmptyForUnrecognised(t *testing.T) {
	raws := []any{
		true,
		"",
		0.0,
		map[string]any{},
		map[string]any{"data": "not a list"},
		[]any{[]any{}, "x", []any{1.0}},
		[]any{[]any{"only one"}},
	}
	for _, raw := range raws {
		assert.NotEmpty(t, Normalize(raw), "raw=%v", raw)
	}
}

func TestNormalize_EmptyInputs(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Equal(t, ShapeEmpty, Classify(nil))

	// An empty list satisfies the image+caption test vacuously.
	assert.Empty(t, Normalize([]any{}))
	assert.Equal(t, ShapeImageCaption, Classify([]any{}))
}

func TestTop(t *testing.T) {
	recs := make([]Recommendation, 20)
	assert.Len(t, Top(recs, MaxResults), 12)
	assert.Len(t, Top(recs[:3], MaxResults), 3)
	assert.Len(t, Top(recs, -1), 20)
}
