package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError describes one failed expectation.
type AssertionError struct {
	Case     string
	Check    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "case %q: %s failed\n", e.Case, e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpect checks a case result and returns one message per failure.
func EvaluateExpect(cr CaseResult, exp Expect) []string {
	var errs []string
	for _, check := range []func(CaseResult, Expect) error{
		assertText,
		assertContains,
		assertCodes,
		assertClean,
		assertParams,
	} {
		if err := check(cr, exp); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertText(cr CaseResult, exp Expect) error {
	if exp.Text == "" || cr.Text == exp.Text {
		return nil
	}
	return &AssertionError{Case: cr.Name, Check: "text", Expected: exp.Text, Actual: cr.Text}
}

func assertContains(cr CaseResult, exp Expect) error {
	for _, sub := range exp.Contains {
		if !strings.Contains(cr.Text, sub) {
			return &AssertionError{
				Case:     cr.Name,
				Check:    "contains",
				Expected: fmt.Sprintf("text containing %q", sub),
				Actual:   cr.Text,
			}
		}
	}
	return nil
}

func assertCodes(cr CaseResult, exp Expect) error {
	if len(exp.Codes) == 0 || slices.Equal(cr.Codes, exp.Codes) {
		return nil
	}
	return &AssertionError{
		Case:     cr.Name,
		Check:    "codes",
		Expected: fmt.Sprint(exp.Codes),
		Actual:   fmt.Sprint(cr.Codes),
	}
}

func assertClean(cr CaseResult, exp Expect) error {
	if !exp.Clean || len(cr.Codes) == 0 {
		return nil
	}
	return &AssertionError{Case: cr.Name, Check: "clean", Expected: "no diagnostics", Actual: fmt.Sprint(cr.Codes)}
}

func assertParams(cr CaseResult, exp Expect) error {
	if len(exp.Params) == 0 || slices.Equal(cr.Params, exp.Params) {
		return nil
	}
	return &AssertionError{
		Case:     cr.Name,
		Check:    "params",
		Expected: strings.Join(exp.Params, ", "),
		Actual:   strings.Join(cr.Params, ", "),
	}
}
