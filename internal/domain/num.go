package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Num is a numeric field as the backend serializes it: a JSON number, a
// decimal string (the backend stringifies Decimal values), or null.
// Invalid or absent input decodes to the zero Num instead of failing the
// whole payload.
type Num struct {
	Value float64
	Valid bool
}

func N(v float64) Num {
	return Num{Value: v, Valid: true}
}

// Float returns the value only when it is present and finite.
func (n Num) Float() (float64, bool) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return 0, false
	}
	return n.Value, true
}

// Or returns the value, or fallback when missing/non-finite.
func (n Num) Or(fallback float64) float64 {
	if v, ok := n.Float(); ok {
		return v
	}
	return fallback
}

func (n *Num) UnmarshalJSON(data []byte) error {
	*n = Num{}
	if string(data) == "null" {
		return nil
	}

	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = s
	}
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

func (n Num) MarshalJSON() ([]byte, error) {
	if _, ok := n.Float(); !ok {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
