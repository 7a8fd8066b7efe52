package model

import (
	"errors"
	"fmt"
)

// DiagnosticCode categorizes per-clause failures.
type DiagnosticCode string

const (
	// CodeFieldNotFound indicates no field carries the clause's alias.
	CodeFieldNotFound DiagnosticCode = "FIELD_NOT_FOUND"

	// CodeFieldAmbiguous indicates more than one field carries the alias.
	CodeFieldAmbiguous DiagnosticCode = "FIELD_AMBIGUOUS"

	// CodeUnknownCondition indicates the condition symbol is not recognized.
	CodeUnknownCondition DiagnosticCode = "UNKNOWN_CONDITION"

	// CodeConditionNotSupported indicates a known condition that the
	// field's type cannot take, e.g. ">" on a string.
	CodeConditionNotSupported DiagnosticCode = "CONDITION_NOT_SUPPORTED"

	// CodeValueConversion indicates the value text did not convert to the
	// field's type.
	CodeValueConversion DiagnosticCode = "VALUE_CONVERSION_FAILED"

	// CodeMalformedClause indicates a clause the scanner could not finish,
	// such as an unterminated value.
	CodeMalformedClause DiagnosticCode = "MALFORMED_CLAUSE"

	// CodeInternalInvariant indicates a structural bug, e.g. a malformed
	// navigation list or overlapping spans.
	CodeInternalInvariant DiagnosticCode = "INTERNAL_INVARIANT"
)

// Diagnostic is a failure attached to one clause.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Message string         `json:"message"`

	// Clause is the raw clause text (or the field text when only that is known).
	Clause string `json:"clause,omitempty"`

	// Start and End are the clause's inclusive byte span; -1 when unknown.
	Start int `json:"start"`
	End   int `json:"end"`

	Err error `json:"-"`
}

// NewDiagnostic creates a diagnostic without a span.
func NewDiagnostic(code DiagnosticCode, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Start:   -1,
		End:     -1,
	}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Start >= 0 {
		return fmt.Sprintf("%s: %s (at %d..%d)", d.Code, d.Message, d.Start, d.End)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// At sets the span and clause text and returns d.
func (d *Diagnostic) At(clause string, start, end int) *Diagnostic {
	d.Clause = clause
	d.Start = start
	d.End = end
	return d
}

// Wrap records the underlying cause and returns d.
func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.Err = err
	return d
}

// IsCode reports whether err is (or wraps) a Diagnostic with the given code.
func IsCode(err error, code DiagnosticCode) bool {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Code == code
	}
	return false
}

// CodeOf returns the diagnostic code carried by err, or "".
func CodeOf(err error) DiagnosticCode {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Code
	}
	return ""
}
