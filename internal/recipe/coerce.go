package recipe

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce converts a form value into a number. Empty, null and unparseable
// input yield 0; it never fails.
func Coerce(v any) float64 {
	var n float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		n = f
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	// Inf cannot be encoded in the request payload.
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
