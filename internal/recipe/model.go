package recipe

import (
	"encoding/json"
	"strconv"
)

// MaxResults is the number of recommendations shown for one submission.
const MaxResults = 12

// Recommendation is the canonical record produced for every recommended recipe.
type Recommendation struct {
	RecipeName      string `json:"recipe_name"`
	ImageURL        string `json:"image_url"`
	IngredientsList string `json:"ingredients_list"`
}

// Request holds the coerced nutritional attributes of one submission.
type Request struct {
	Calories      float64 `json:"calories"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Protein       float64 `json:"protein"`
	Cholesterol   float64 `json:"cholesterol"`
	Sodium        float64 `json:"sodium"`
	Fiber         float64 `json:"fiber"`
	Ingredients   string  `json:"ingredients"`
}

// PredictArgs returns the named arguments of the remote predict call.
// The backend expects carbohydrates under "carbs".
func (r Request) PredictArgs() map[string]any {
	return map[string]any{
		"calories":    r.Calories,
		"fat":         r.Fat,
		"carbs":       r.Carbohydrates,
		"protein":     r.Protein,
		"cholesterol": r.Cholesterol,
		"sodium":      r.Sodium,
		"fiber":       r.Fiber,
		"ingredients": r.Ingredients,
	}
}

// PredictParams is the positional order of the predict endpoint's parameters.
var PredictParams = []string{"calories", "fat", "carbs", "protein", "cholesterol", "sodium", "fiber", "ingredients"}

// Form holds the free-text fields of the recommendation form. Numeric fields
// may arrive as strings, numbers or null.
type Form struct {
	Calories      any    `json:"calories"`
	Fat           any    `json:"fat"`
	Carbohydrates any    `json:"carbohydrates"`
	Protein       any    `json:"protein"`
	Cholesterol   any    `json:"cholesterol"`
	Sodium        any    `json:"sodium"`
	Fiber         any    `json:"fiber"`
	Ingredients   string `json:"ingredients"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Form.
// A non-string ingredients value is kept as its text instead of failing the decode.
func (f *Form) UnmarshalJSON(data []byte) error {
	type Alias Form // Create an alias to avoid infinite recursion
	aux := &struct {
		Ingredients any `json:"ingredients"`
		*Alias
	}{
		Alias: (*Alias)(f),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	f.Ingredients = ""
	if aux.Ingredients != nil {
		f.Ingredients = displayText(aux.Ingredients)
	}
	return nil
}

// Request coerces the form into a Request.
func (f Form) Request() Request {
	return Request{
		Calories:      Coerce(f.Calories),
		Fat:           Coerce(f.Fat),
		Carbohydrates: Coerce(f.Carbohydrates),
		Protein:       Coerce(f.Protein),
		Cholesterol:   Coerce(f.Cholesterol),
		Sodium:        Coerce(f.Sodium),
		Fiber:         Coerce(f.Fiber),
		Ingredients:   f.Ingredients,
	}
}

// FormFromRequest renders a request back into form fields.
func FormFromRequest(r Request) Form {
	format := func(v float64) any { return strconv.FormatFloat(v, 'f', -1, 64) }
	return Form{
		Calories:      format(r.Calories),
		Fat:           format(r.Fat),
		Carbohydrates: format(r.Carbohydrates),
		Protein:       format(r.Protein),
		Cholesterol:   format(r.Cholesterol),
		Sodium:        format(r.Sodium),
		Fiber:         format(r.Fiber),
		Ingredients:   r.Ingredients,
	}
}

// Top returns at most n recommendations.
func Top(recs []Recommendation, n int) []Recommendation {
	if n < 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}
