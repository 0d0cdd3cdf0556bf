package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NeutralRating replaces an unknown rating wherever arithmetic needs a number.
const NeutralRating = 5.0

const unknownLiteral = "unknown"

// Rating is a 1-10 value that may be unknown. The zero value is unknown.
type Rating struct {
	value float64
	known bool
}

func Known(v float64) Rating {
	return Rating{value: v, known: true}
}

func Unknown() Rating {
	return Rating{}
}

func (r Rating) IsKnown() bool {
	return r.known
}

// Value reports the stored number and whether it is known.
func (r Rating) Value() (float64, bool) {
	return r.value, r.known
}

// Normalized maps unknown to NeutralRating. The receiver is not changed.
func (r Rating) Normalized() float64 {
	if !r.known {
		return NeutralRating
	}
	return r.value
}

func (r Rating) String() string {
	if !r.known {
		return unknownLiteral
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.known {
		return json.Marshal(unknownLiteral)
	}
	return json.Marshal(r.value)
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Unknown()
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == unknownLiteral || s == "" {
			*r = Unknown()
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("rating: invalid value %q", s)
		}
		*r = Known(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	*r = Known(v)
	return nil
}

// RatingFromNullable converts a nullable storage column into a Rating.
func RatingFromNullable(v *float64) Rating {
	if v == nil {
		return Unknown()
	}
	return Known(*v)
}

// Nullable is the inverse of RatingFromNullable.
func (r Rating) Nullable() *float64 {
	if !r.known {
		return nil
	}
	v := r.value
	return &v
}
