package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/automodel/internal/classify"
	"github.com/roach88/automodel/internal/convert"
	"github.com/roach88/automodel/internal/exprgen"
	"github.com/roach88/automodel/internal/model"
	"github.com/roach88/automodel/internal/registry"
	"github.com/roach88/automodel/internal/scanner"
)

// Compiler compiles filter text. It holds no per-call state and is safe
// for concurrent use once constructed.
type Compiler struct {
	registry *registry.Registry
	logger   *slog.Logger
	clock    convert.Clock

	strategyName  string
	strategy      exprgen.Strategy
	parameters    bool
	separator     string
	likeFunction  string
	expLikeTokens string

	classifier *classify.Classifier
	converter  *convert.Converter
	generator  *exprgen.Generator
}

// New creates a compiler over reg. It fails only for an unknown
// strategy name in the applied options.
func New(reg *registry.Registry, opts ...Option) (*Compiler, error) {
	c := &Compiler{registry: reg}
	WithOptions(DefaultOptions())(c)
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.strategy == nil {
		s, err := exprgen.StrategyByName(c.strategyName)
		if err != nil {
			return nil, err
		}
		c.strategy = s
	}

	c.classifier = classify.New(c.separator)
	c.converter = convert.New(c.separator, c.clock)
	c.generator = exprgen.New(
		exprgen.WithStrategy(c.strategy),
		exprgen.WithLikeFunction(c.likeFunction),
		exprgen.WithExpLikeTokens(c.expLikeTokens),
	)
	return c, nil
}

// Strategy returns the name of the strategy in use.
func (c *Compiler) Strategy() string {
	return c.strategy.Name()
}

// Registry returns the registry the compiler resolves against.
func (c *Compiler) Registry() *registry.Registry {
	return c.registry
}

// Result is the outcome of one compile call.
type Result struct {
	Table    string `json:"table"`
	Strategy string `json:"strategy"`
	Original string `json:"original"`

	// Text is the compiled predicate. Clauses that failed keep their raw text.
	Text string `json:"text"`

	Tokens      []*model.Token      `json:"tokens"`
	Diagnostics []*model.Diagnostic `json:"diagnostics,omitempty"`

	// Params holds placeholder values when parameters are enabled.
	Params []any `json:"params,omitempty"`
}

// HasErrors reports whether any clause failed.
func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Err joins every diagnostic into one error, or returns nil.
func (r *Result) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Compile compiles text against the table registered as typeName.
//
// Per-clause failures never abort the call: they are reported in
// Result.Diagnostics. The returned error is non-nil only when the table
// is unknown or the clause spans violate their ordering invariant.
func (c *Compiler) Compile(typeName, text string) (*Result, error) {
	table, err := c.registry.Get(typeName)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("compiling filter", "table", typeName, "filter", text)

	scan := scanner.Scan(text)
	ctx := model.NewContext(text)
	ctx.Diagnostics = append(ctx.Diagnostics, scan.Diagnostics...)

	var params *exprgen.Params
	if c.parameters {
		params = &exprgen.Params{}
	}
	for _, clause := range scan.Clauses {
		tok := clause.Token()
		ctx.Add(tok)
		c.compileToken(table, tok, params)
	}

	final, err := ctx.Finalize()
	if err != nil {
		return nil, fmt.Errorf("splice %q: %w", text, err)
	}

	res := &Result{
		Table:       typeName,
		Strategy:    c.strategy.Name(),
		Original:    text,
		Text:        final,
		Tokens:      ctx.Tokens,
		Diagnostics: ctx.Errors(),
	}
	if params != nil {
		res.Params = params.Values
	}

	for _, d := range res.Diagnostics {
		c.logger.Debug("clause failed", "table", typeName, "code", d.Code, "clause", d.Clause, "error", d.Message)
	}
	c.logger.Debug("compiled filter", "table", typeName, "expression", final, "clauses", len(ctx.Tokens), "errors", len(res.Diagnostics))
	return res, nil
}

// compileToken runs one token through resolution, classification,
// conversion and generation, stopping at the first failure.
func (c *Compiler) compileToken(table *registry.Table, tok *model.Token, params *exprgen.Params) {
	f, err := table.Resolve(tok.FieldStr)
	if err != nil {
		tok.Fail(resolveDiagnostic(err))
		return
	}
	tok.Field = f

	if c.classifier.Classify(tok) != nil {
		return
	}
	if c.converter.Convert(tok) != nil {
		return
	}
	// failures are attached to tok and collected from the context
	_ = c.generator.Generate(tok, params)
}

func resolveDiagnostic(err error) *model.Diagnostic {
	var fe *registry.FieldError
	if !errors.As(err, &fe) {
		return model.NewDiagnostic(model.CodeInternalInvariant, "%v", err).Wrap(err)
	}
	code := model.CodeFieldNotFound
	if fe.Kind == registry.FieldAmbiguous {
		code = model.CodeFieldAmbiguous
	}
	return model.NewDiagnostic(code, "%s", fe.Error()).Wrap(err)
}
