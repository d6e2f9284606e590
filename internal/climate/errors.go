package climate

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse marks an upstream payload that is missing fields
	// or carries values that do not parse.
	ErrMalformedResponse = errors.New("malformed response")
)

// MalformedResponseError pinpoints the offending record. Index is -1 for
// payload-level problems.
type MalformedResponseError struct {
	Dataset Dataset
	Index   int
	Field   string
	Value   string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("%s: malformed response", e.Dataset)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at record %d", e.Index)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" value %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func malformed(d Dataset, index int, field, value string, err error) error {
	return &MalformedResponseError{Dataset: d, Index: index, Field: field, Value: value, Err: err}
}
