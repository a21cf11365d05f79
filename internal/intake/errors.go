package intake

import (
	"errors"
	"strings"
)

// ErrValidation matches every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError lists the request fields that are missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please complete all required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
