package convert

import (
	"errors"
	"fmt"

	"github.com/roach88/automodel/internal/model"
)

// ConversionError reports a value that does not convert to its field type.
type ConversionError struct {
	Value string
	Type  model.BasicType
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %q to %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("cannot convert %q to %s", e.Value, e.Type)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// IsConversionError reports whether err is a ConversionError.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}

func conversionError(value string, typ model.BasicType, format string, args ...any) error {
	var err error
	if format != "" {
		err = fmt.Errorf(format, args...)
	}
	return &ConversionError{Value: value, Type: typ, Err: err}
}
