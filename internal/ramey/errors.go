package ramey

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every parse failure of a parameter or table cell
	ErrInvalidInput = errors.New("invalid input")
	// ErrDivisionByZero is returned when thermal diffusivity times production time is zero
	ErrDivisionByZero = errors.New("division by zero: thermal diffusivity * production time is 0")
	// ErrOverflow is returned when finite inputs produce a non-finite temperature
	ErrOverflow = errors.New("temperature computation overflowed")
)

// InvalidInputError reports a value that could not be read as a finite real number
type InvalidInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input for %s: %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid input for %s: %q", e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidInput) hold for any InvalidInputError
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
