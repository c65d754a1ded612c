// Package aijson turns raw model output into validated Go values.
package aijson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// Outcome tags how decoding ended.
type Outcome int

const (
	OK Outcome = iota
	ParseError
	SchemaError
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case ParseError:
		return "parse_error"
	case SchemaError:
		return "schema_error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ErrNoObject is returned when the output contains no JSON object at all.
var ErrNoObject = errors.New("no JSON object in model output")

// Result is the tagged outcome of Decode. On failure Value holds the seed.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// OK reports whether decoding and validation succeeded.
func (r Result[T]) OK() bool { return r.Outcome == OK }

var validate = validator.New(validator.WithRequiredStructEnabled())

type selfValidating interface {
	Validate() error
}

// Decode parses raw into a copy of seed. Fields the model omits keep the seed's values.
// Markdown fences and chatter around the outermost object are ignored; the object itself
// must be valid JSON (ParseError), match T's field types and pass its validate tags and
// Validate method when present (SchemaError).
func Decode[T any](raw string, seed T) Result[T] {
	candidate, ok := ExtractObject(raw)
	if !ok {
		return Result[T]{Value: seed, Outcome: ParseError, Err: ErrNoObject}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return Result[T]{Value: seed, Outcome: ParseError, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	value := seed
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return Result[T]{Value: seed, Outcome: SchemaError, Err: fmt.Errorf("unexpected field type: %w", err)}
	}
	if err := validate.Struct(value); err != nil {
		return Result[T]{Value: seed, Outcome: SchemaError, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	if sv, ok := any(value).(selfValidating); ok {
		if err := sv.Validate(); err != nil {
			return Result[T]{Value: seed, Outcome: SchemaError, Err: fmt.Errorf("schema validation failed: %w", err)}
		}
	}
	return Result[T]{Value: value, Outcome: OK}
}

// ExtractObject strips markdown code fences and returns the text between the first '{'
// and the last '}'.
func ExtractObject(raw string) (string, bool) {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first == -1 || last == -1 || last < first {
		return "", false
	}
	return s[first : last+1], true
}
