package period

import (
	"errors"
	"fmt"
)

// ErrInvalidPeriod matches every parse failure via errors.Is
var ErrInvalidPeriod = errors.New("invalid period")

// ParseError reports a period string that does not fit its Type
type ParseError struct {
	Input  string
	Type   string
	Reason string
}

// Error implements error
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s period %q: %s", e.Type, e.Input, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidPeriod) hold
func (e *ParseError) Is(target error) bool { return target == ErrInvalidPeriod }

func fail(t Type, input, format string, a ...any) error {
	return &ParseError{Input: input, Type: t.Name(), Reason: fmt.Sprintf(format, a...)}
}
