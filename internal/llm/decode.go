package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"studyhub/internal/metrics"
	"studyhub/internal/validation"
)

// SchemaError means the model answered, but not in the declared shape.
// Callers may retry the generation.
type SchemaError struct {
	Schema string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("generated %s was not in the expected format: %s", e.Schema, e.Reason)
}

// Checker is implemented by content types with rules beyond struct tags.
type Checker interface {
	Check() error
}

// StripFences removes a surrounding Markdown code fence (``` or ```json).
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag on the opening line
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode parses generated text into T and validates it. Any mismatch is a *SchemaError.
func Decode[T any](schema, text string) (*T, error) {
	v, err := decode[T](schema, text)
	if err != nil {
		metrics.SchemaRejected(schema)
	}
	return v, err
}

func decode[T any](schema, text string) (*T, error) {
	body := StripFences(text)
	if body == "" {
		return nil, &SchemaError{Schema: schema, Reason: "empty response"}
	}

	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &SchemaError{Schema: schema, Reason: fmt.Sprintf("field %q has the wrong type", typeErr.Field)}
		}
		return nil, &SchemaError{Schema: schema, Reason: "not valid JSON"}
	}

	if err := validation.Validator().Struct(&v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, &SchemaError{Schema: schema, Reason: describe(validation.Fields(verrs))}
		}
		return nil, &SchemaError{Schema: schema, Reason: err.Error()}
	}

	if c, ok := any(&v).(Checker); ok {
		if err := c.Check(); err != nil {
			return nil, &SchemaError{Schema: schema, Reason: err.Error()}
		}
	}
	return &v, nil
}

func describe(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + fields[k]
	}
	return strings.Join(parts, "; ")
}
