// Package types contains small value types shared across layers.
package types

import (
	"math"
	"strconv"
)

// Ratio is a full-precision float that is rounded to four decimal places
// only when encoded as JSON.
type Ratio float64

// MarshalJSON implements json.Marshaler.
func (r Ratio) MarshalJSON() ([]byte, error) {
	return marshalRounded(float64(r), 4), nil
}

// Score is a float rounded to three decimal places when encoded.
type Score float64

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	return marshalRounded(float64(s), 3), nil
}

// Average is a float rounded to two decimal places when encoded.
type Average float64

// MarshalJSON implements json.Marshaler.
func (a Average) MarshalJSON() ([]byte, error) {
	return marshalRounded(float64(a), 2), nil
}

// Round rounds v half away from zero to the given number of places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func marshalRounded(v float64, places int) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null")
	}
	return strconv.AppendFloat(nil, Round(v, places), 'f', -1, 64)
}
