package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSealed is returned when registering after the registry was sealed.
	ErrSealed = errors.New("registry is sealed")

	// ErrDuplicateTable is returned when a table name is registered twice.
	ErrDuplicateTable = errors.New("table already registered")

	// ErrUnknownTable is returned when a table name is not registered.
	ErrUnknownTable = errors.New("unknown table")
)

// FieldErrorKind distinguishes resolution failures.
type FieldErrorKind string

const (
	FieldNotFound  FieldErrorKind = "not_found"
	FieldAmbiguous FieldErrorKind = "ambiguous"
)

// FieldError reports a failed field resolution.
type FieldError struct {
	Kind  FieldErrorKind
	Table string
	Text  string

	// Candidates lists the competing fields for ambiguity, or every
	// activation name of the table for not-found.
	Candidates []string
}

func (e *FieldError) Error() string {
	switch e.Kind {
	case FieldAmbiguous:
		return fmt.Sprintf("field %q is ambiguous in %s: matches %s", e.Text, e.Table, strings.Join(e.Candidates, ", "))
	default:
		return fmt.Sprintf("field %q not found in %s", e.Text, e.Table)
	}
}

// IsNotFound reports whether err is a not-found FieldError.
func IsNotFound(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe) && fe.Kind == FieldNotFound
}

// IsAmbiguous reports whether err is an ambiguity FieldError.
func IsAmbiguous(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe) && fe.Kind == FieldAmbiguous
}
