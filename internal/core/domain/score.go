package domain

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Score is a 0-100 integer decoded leniently from model output.
// JSON numbers and numeric strings are accepted and rounded half away from zero;
// booleans, objects, arrays and non-numeric strings decode to 0. null leaves the value untouched.
type Score struct {
	value   int
	present bool
}

// NewScore builds a Score clamped to 0-100.
func NewScore(n int) Score {
	return Score{value: clampScore(int64(n)), present: true}
}

// Int returns the integer value.
func (s Score) Int() int { return s.value }

// Present reports whether a numeric value was decoded.
func (s Score) Present() bool { return s.present }

func (s *Score) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			*s = Score{}
			return nil
		}
		text = strings.TrimSpace(unquoted)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		*s = Score{}
		return nil
	}
	*s = Score{value: clampDecimal(d), present: true}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(s.value), 10), nil
}

// RatingFromScore derives the 0-10 rating: round(score / 10).
func RatingFromScore(score int) int {
	return int(decimal.NewFromInt(int64(score)).Div(decimal.NewFromInt(10)).Round(0).IntPart())
}

// clampDecimal bounds d before narrowing it, since IntPart wraps outside int64.
func clampDecimal(d decimal.Decimal) int {
	d = d.Round(0)
	if d.IsNegative() {
		return MinScore
	}
	if d.GreaterThan(decimal.NewFromInt(MaxScore)) {
		return MaxScore
	}
	return int(d.IntPart())
}

func clampScore(n int64) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return int(n)
}
