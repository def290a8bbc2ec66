package recommend

import (
	"context"

	"foodrec/internal/log"
	"foodrec/internal/metrics"
	"foodrec/internal/recipe"
)

// TestCase is a named sample submission.
type TestCase struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Payload recipe.Request `json:"payload"`
}

// TestResult reports the outcome of one test case.
type TestResult struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// DefaultTestCases returns the built-in sample submissions.
func DefaultTestCases() []TestCase {
	return []TestCase{
		{
			ID:    "salad",
			Label: "Healthy Salad",
			Payload: recipe.Request{
				Calories: 250, Fat: 10, Carbohydrates: 30, Protein: 8,
				Cholesterol: 5, Sodium: 150, Fiber: 5,
				Ingredients: "lettuce, tomato, cucumber",
			},
		},
		{
			ID:    "protein",
			Label: "High-Protein Meal",
			Payload: recipe.Request{
				Calories: 500, Fat: 15, Carbohydrates: 40, Protein: 35,
				Cholesterol: 80, Sodium: 250, Fiber: 6,
				Ingredients: "chicken, garlic, olive oil",
			},
		},
		{
			ID:    "dessert",
			Label: "Dessert",
			Payload: recipe.Request{
				Calories: 450, Fat: 20, Carbohydrates: 60, Protein: 5,
				Cholesterol: 40, Sodium: 100, Fiber: 2,
				Ingredients: "chocolate, sugar, flour",
			},
		},
	}
}

// FindTestCase looks up a built-in test case by id.
func FindTestCase(id string) (TestCase, bool) {
	for _, tc := range DefaultTestCases() {
		if tc.ID == id {
			return tc, true
		}
	}
	return TestCase{}, false
}

// RunTestCases runs the cases one after another, each call finishing
// before the next starts. A failing case is recorded and the run moves on;
// results are in case order.
func (s *Service) RunTestCases(ctx context.Context, cases []TestCase) []TestResult {
	logger := log.WithContext(ctx, log.WithComponent("recommend"))
	out := make([]TestResult, 0, len(cases))

	for _, tc := range cases {
		recs, err := s.FetchRecommendations(ctx, tc.Payload)
		if err != nil {
			out = append(out, TestResult{ID: tc.ID, Label: tc.Label, OK: false, Error: err.Error()})
			s.cache.Invalidate()
			metrics.RecordTestCase(tc.ID, false)
			continue
		}
		out = append(out, TestResult{ID: tc.ID, Label: tc.Label, OK: true, Count: len(recs)})
		metrics.RecordTestCase(tc.ID, true)
	}

	logger.Info().Int("cases", len(cases)).Msg("test cases finished")
	return out
}
