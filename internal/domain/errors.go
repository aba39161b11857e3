package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidProblem is matched by every DefinitionError.
var ErrInvalidProblem = errors.New("invalid problem definition")

// DefinitionError reports a malformed problem instance.
// Such instances are rejected at construction and never reach the search.
type DefinitionError struct {
	Field  string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid problem: %s: %s", e.Field, e.Reason)
}

func (e *DefinitionError) Is(target error) bool { return target == ErrInvalidProblem }

func definitionErrorf(field, format string, args ...any) *DefinitionError {
	return &DefinitionError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
