package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/automodel/internal/compiler"
	"github.com/roach88/automodel/internal/exprgen"
	"github.com/roach88/automodel/internal/model"
	"github.com/roach88/automodel/internal/registry"
	"github.com/roach88/automodel/internal/schema"
	"github.com/roach88/automodel/internal/testutil"
)

// Harness runs the cases of one scenario against a compiler built from
// its schema file.
type Harness struct {
	compiler *compiler.Compiler
	table    string
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load the schema file into a fresh registry
// 2. Build a compiler with the scenario options and a fixed clock
// 3. Run every case and check its expectations
//
// A non-nil error means the scenario could not run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := compiler.DefaultOptions()
	if scenario.Options != nil {
		opts = *scenario.Options
	}

	file, err := schema.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	reg := registry.New(append(opts.RegistryOptions(), registry.WithLogger(logger))...)
	if err := schema.Register(reg, file); err != nil {
		return nil, fmt.Errorf("failed to register schema: %w", err)
	}
	reg.Seal()
	if _, err := reg.Get(scenario.Table); err != nil {
		return nil, err
	}

	now := testutil.ReferenceTime
	if scenario.Now != "" {
		if now, err = time.Parse(time.RFC3339, scenario.Now); err != nil {
			return nil, fmt.Errorf("now: %w", err)
		}
	}

	c, err := compiler.New(reg,
		compiler.WithOptions(opts),
		compiler.WithLogger(logger),
		compiler.WithClock(testutil.NewFixedClock(now)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compiler: %w", err)
	}

	h := &Harness{compiler: c, table: scenario.Table, logger: logger}

	result := NewResult()
	result.Strategy = c.Strategy()
	for i, tc := range scenario.Cases {
		cr, err := h.runCase(tc)
		if err != nil {
			return nil, fmt.Errorf("case %d %q: %w", i, tc.Name, err)
		}
		result.AddCase(cr)
		for _, msg := range EvaluateExpect(cr, tc.Expect) {
			result.AddError(msg)
		}
		h.logger.Info("case completed", "case", tc.Name, "kind", cr.Kind, "codes", cr.Codes)
	}
	return result, nil
}

// runCase compiles one case. Only failures that stop compilation of the
// whole input are returned as errors; clause failures become codes.
func (h *Harness) runCase(tc Case) (CaseResult, error) {
	cr := CaseResult{Name: tc.Name, Kind: tc.Kind(), Input: tc.Input()}

	switch cr.Kind {
	case KindFilter:
		res, err := h.compiler.Compile(h.table, tc.Filter)
		if err != nil {
			return cr, err
		}
		return fromResult(cr, res)

	case KindSelect:
		text, err := h.compiler.SelectColumns(h.table, tc.Select, tc.Except)
		if code := model.CodeOf(err); code != "" {
			cr.Codes = []string{string(code)}
			return cr, nil
		}
		if err != nil {
			return cr, err
		}
		cr.Text = text
		return cr, nil

	case KindFuzzy:
		res, err := h.compiler.Fuzzy(h.table, tc.Fuzzy, tc.Columns)
		if code := model.CodeOf(err); code != "" {
			cr.Codes = []string{string(code)}
			return cr, nil
		}
		if err != nil {
			return cr, err
		}
		return fromResult(cr, res)
	}
	return cr, fmt.Errorf("no input")
}

func fromResult(cr CaseResult, res *compiler.Result) (CaseResult, error) {
	cr.Text = res.Text
	for _, d := range res.Diagnostics {
		cr.Codes = append(cr.Codes, string(d.Code))
	}
	for _, v := range res.Params {
		lit, err := exprgen.FormatParam(v)
		if err != nil {
			return cr, err
		}
		cr.Params = append(cr.Params, lit)
	}
	return cr, nil
}
