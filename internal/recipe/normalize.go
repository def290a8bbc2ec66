package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape names the response layout a raw prediction was recognised as.
type Shape string

const (
	ShapeEmpty          Shape = "empty"
	ShapeImageCaption   Shape = "image_caption"
	ShapeObjects        Shape = "objects"
	ShapeParallelArrays Shape = "parallel_arrays"
	ShapePairs          Shape = "pairs"
	ShapeFallback       Shape = "fallback"
)

// unwrapRule peels one envelope off a response.
type unwrapRule struct {
	name   string
	unwrap func(v any) (any, bool)
}

// shapeRule turns a list of items into recommendations when it matches.
type shapeRule struct {
	shape   Shape
	matches func(items []any) bool
	build   func(items []any) []Recommendation
}

// Envelopes are tried before shapes; order matters in both lists.
var unwrapRules = []unwrapRule{
	{name: "data_field", unwrap: unwrapDataField},
	{name: "singleton_list", unwrap: unwrapSingletonList},
}

var shapeRules = []shapeRule{
	{shape: ShapeImageCaption, matches: allImageCaption, build: buildImageCaption},
	{shape: ShapeObjects, matches: allObjects, build: buildObjects},
	{shape: ShapeParallelArrays, matches: isParallelArrays, build: buildParallelArrays},
	{shape: ShapePairs, matches: allPairs, build: buildPairs},
}

// Normalize maps any prediction response onto recommendations. It never
// fails: input no rule recognises becomes a single record naming the raw
// value. A nil response has nothing to show and yields no records.
func Normalize(raw any) []Recommendation {
	recs, _ := normalize(raw)
	return recs
}

// Classify reports which shape Normalize would use for raw.
func Classify(raw any) Shape {
	_, shape := normalize(raw)
	return shape
}

// NormalizeWithShape is Normalize that also reports the shape used.
func NormalizeWithShape(raw any) ([]Recommendation, Shape) {
	return normalize(raw)
}

func normalize(raw any) ([]Recommendation, Shape) {
	v := raw
unwrap:
	for {
		if v == nil {
			return []Recommendation{}, ShapeEmpty
		}
		for _, r := range unwrapRules {
			if inner, ok := r.unwrap(v); ok {
				v = inner
				continue unwrap
			}
		}
		break
	}

	if items, ok := v.([]any); ok {
		for _, r := range shapeRules {
			if r.matches(items) {
				return r.build(items), r.shape
			}
		}
	}

	return []Recommendation{{RecipeName: jsonText(v)}}, ShapeFallback
}

func unwrapDataField(v any) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	inner, ok := m["data"].([]any)
	return inner, ok
}

func unwrapSingletonList(v any) (any, bool) {
	items, ok := v.([]any)
	if !ok || len(items) != 1 {
		return nil, false
	}
	inner, ok := items[0].([]any)
	return inner, ok
}

func allImageCaption(items []any) bool {
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok || !truthy(m["image"]) || !truthy(m["caption"]) {
			return false
		}
	}
	return true
}

func buildImageCaption(items []any) []Recommendation {
	recs := make([]Recommendation, 0, len(items))
	for i, it := range items {
		m := it.(map[string]any)
		caption := displayText(m["caption"])
		name, _, _ := strings.Cut(caption, "\n")
		if name == "" {
			name = placeholderName(i)
		}
		recs = append(recs, Recommendation{
			RecipeName:      name,
			ImageURL:        captionImageURL(m["image"]),
			IngredientsList: caption,
		})
	}
	return recs
}

func allObjects(items []any) bool {
	for _, it := range items {
		if _, ok := it.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func buildObjects(items []any) []Recommendation {
	recs := make([]Recommendation, 0, len(items))
	for i, it := range items {
		m := it.(map[string]any)
		rec := Recommendation{RecipeName: placeholderName(i)}
		if v, ok := firstTruthy(m, "recipe_name", "name", "title"); ok {
			rec.RecipeName = displayText(v)
		}
		if v, ok := firstTruthy(m, "image_url", "image"); ok {
			rec.ImageURL = imageText(v)
		}
		if v, ok := firstTruthy(m, "ingredients_list", "ingredients"); ok {
			rec.IngredientsList = displayText(v)
		}
		recs = append(recs, rec)
	}
	return recs
}

func isParallelArrays(items []any) bool {
	if len(items) < 2 {
		return false
	}
	_, namesOK := items[0].([]any)
	_, urlsOK := items[1].([]any)
	return namesOK && urlsOK
}

func buildParallelArrays(items []any) []Recommendation {
	names := items[0].([]any)
	urls := items[1].([]any)
	recs := make([]Recommendation, 0, len(names))
	for i, name := range names {
		var url any
		if i < len(urls) {
			url = urls[i]
		}
		recs = append(recs, pairRecommendation(i, name, url))
	}
	return recs
}

func allPairs(items []any) bool {
	for _, it := range items {
		pair, ok := it.([]any)
		if !ok || len(pair) < 2 {
			return false
		}
	}
	return true
}

func buildPairs(items []any) []Recommendation {
	recs := make([]Recommendation, 0, len(items))
	for i, it := range items {
		pair := it.([]any)
		recs = append(recs, pairRecommendation(i, pair[0], pair[1]))
	}
	return recs
}

func pairRecommendation(i int, name, url any) Recommendation {
	rec := Recommendation{RecipeName: placeholderName(i)}
	if truthy(name) {
		rec.RecipeName = displayText(name)
	}
	if truthy(url) {
		rec.ImageURL = displayText(url)
	}
	return rec
}

func placeholderName(i int) string {
	return fmt.Sprintf("Recipe %d", i+1)
}

func firstTruthy(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v := m[k]; truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// captionImageURL reads a gallery item's image: a URL string or a file
// object carrying a url field. Anything else has no URL.
func captionImageURL(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if u := t["url"]; truthy(u) {
			return displayText(u)
		}
	}
	return ""
}

// imageText extracts a URL from an object's image value, which is either
// the URL itself or a file object carrying a url field. Other values pass
// through as text.
func imageText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if u := t["url"]; truthy(u) {
			return displayText(u)
		}
		return ""
	case nil:
		return ""
	default:
		return displayText(t)
	}
}

// truthy treats nil, "", 0, NaN and false as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

func displayText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	default:
		return jsonText(t)
	}
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
