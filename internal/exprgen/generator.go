package exprgen

import (
	"strconv"
	"strings"

	"github.com/roach88/automodel/internal/model"
)

const (
	// DefaultLikeFunction is the like call emitted for fuzzy string matches.
	DefaultLikeFunction = "EF.Functions.Like"

	// DefaultExpLikeTokens are the operator characters of an explike pattern.
	DefaultExpLikeTokens = "|&()"
)

// Generator builds token expressions. It is immutable after New and safe
// for concurrent use.
type Generator struct {
	strategy      Strategy
	likeFunction  string
	expLikeTokens string
}

// Option configures a Generator.
type Option func(*Generator)

// WithStrategy selects how quantifiers and references are written.
func WithStrategy(s Strategy) Option {
	return func(g *Generator) {
		if s != nil {
			g.strategy = s
		}
	}
}

// WithLikeFunction sets the function emitted for like matches.
func WithLikeFunction(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.likeFunction = name
		}
	}
}

// WithExpLikeTokens restricts which of "|&()" act as explike operators.
func WithExpLikeTokens(tokens string) Option {
	return func(g *Generator) {
		if tokens != "" {
			g.expLikeTokens = tokens
		}
	}
}

// New creates a Generator using the implicit strategy unless configured otherwise.
func New(opts ...Option) *Generator {
	g := &Generator{
		strategy:      ImplicitScope{},
		likeFunction:  DefaultLikeFunction,
		expLikeTokens: DefaultExpLikeTokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Strategy returns the configured strategy.
func (g *Generator) Strategy() Strategy {
	return g.strategy
}

// Params collects parameter values in placeholder order.
type Params struct {
	Values []any
}

// Add appends v and returns its placeholder.
func (p *Params) Add(v any) string {
	p.Values = append(p.Values, v)
	return "@" + strconv.Itoa(len(p.Values)-1)
}

// Generate sets tok.Expression from the token's field, condition,
// features and converted value. With a nil params literals are inlined,
// otherwise they are appended to params and referenced as @n.
func (g *Generator) Generate(tok *model.Token, params *Params) error {
	if tok.Field == nil || tok.Condition == model.ConditionNone {
		return tok.Fail(model.NewDiagnostic(model.CodeInternalInvariant, "generate called on unclassified token %q", tok.FieldStr))
	}

	var expr string
	if _, ok := tok.Value.(model.NoMatch); ok {
		expr = "false"
	} else {
		local, err := g.condition(tok, params)
		if err != nil {
			return tok.Fail(asDiagnostic(err))
		}
		expr, err = g.Blend(tok.Field, local)
		if err != nil {
			return tok.Fail(asDiagnostic(err))
		}
	}

	if tok.Features.Has(model.FeatureNot) {
		expr = "!(" + expr + ")"
	}
	tok.Expression = expr
	return nil
}

// Blend quantifies over every collection hop of f. local receives the
// reference to the field as visible in the innermost frame and returns
// the field-local condition.
func (g *Generator) Blend(f *model.Field, local func(ref string) string) (string, error) {
	if err := checkField(f); err != nil {
		return "", err
	}

	s := NewScope(f.Quantifiers())
	prefix := ""
	for _, h := range f.Navigation {
		path := joinPath(prefix, h.Name)
		if !h.Collection {
			prefix = path
			continue
		}
		s.Push(g.strategy.Ref(s, path))
		prefix = ""
	}

	leaf := joinPath(prefix, f.ReflectionName)
	var ref string
	if f.Type.Collection {
		s.Push(g.strategy.Ref(s, leaf))
		ref = g.strategy.Element(s)
	} else {
		ref = g.strategy.Ref(s, leaf)
	}

	if s.Depth() != s.Total {
		return "", model.NewDiagnostic(model.CodeInternalInvariant,
			"field %s opened %d quantifiers, want %d", f.Path(), s.Depth(), s.Total)
	}

	expr := local(ref)
	for {
		fr, ok := s.Pop()
		if !ok {
			break
		}
		expr = g.strategy.Quantify(s, fr, expr)
	}
	return expr, nil
}

func checkField(f *model.Field) error {
	if f == nil {
		return model.NewDiagnostic(model.CodeInternalInvariant, "nil field")
	}
	if f.ReflectionName == "" {
		return model.NewDiagnostic(model.CodeInternalInvariant, "field without reflection name")
	}
	for i, h := range f.Navigation {
		if h.Name == "" || strings.ContainsAny(h.Name, ". ") {
			return model.NewDiagnostic(model.CodeInternalInvariant,
				"field %s: malformed navigation hop %d %q", f.ReflectionName, i, h.Name)
		}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// condition builds the field-local condition for tok.
func (g *Generator) condition(tok *model.Token, params *Params) (func(string) string, error) {
	f := tok.Field

	switch tok.Condition {
	case model.ConditionIs:
		nt, ok := tok.Value.(model.NullTest)
		if !ok {
			return nil, invalidValue(tok)
		}
		op := "=="
		if nt.Not {
			op = "!="
		}
		return func(ref string) string { return ref + " " + op + " null" }, nil

	case model.ConditionExpLike:
		pattern, ok := tok.Value.(string)
		if !ok {
			return nil, invalidValue(tok)
		}
		return g.expLike(pattern, params)
	}

	if values, ok := tok.Value.([]any); ok {
		return g.multi(values, f, params)
	}

	if tok.Features.Has(model.FeatureFuzzy) || tok.Condition == model.ConditionLike {
		return g.fuzzy(tok.Value, f, params)
	}

	op, err := operator(tok.Condition)
	if err != nil {
		return nil, err
	}
	lit, err := literal(tok.Value, f, params)
	if err != nil {
		return nil, err
	}
	return func(ref string) string { return ref + " " + op + " " + lit }, nil
}

func (g *Generator) multi(values []any, f *model.Field, params *Params) (func(string) string, error) {
	if params != nil {
		ph := params.Add(values)
		return func(ref string) string { return ph + ".Contains(" + ref + ")" }, nil
	}
	lits := make([]string, len(values))
	for i, v := range values {
		lit, err := literal(v, f, nil)
		if err != nil {
			return nil, err
		}
		lits[i] = lit
	}
	list := "(" + strings.Join(lits, ", ") + ")"
	return func(ref string) string { return ref + " in " + list }, nil
}

func (g *Generator) fuzzy(v any, f *model.Field, params *Params) (func(string) string, error) {
	lit, err := literal(v, f, params)
	if err != nil {
		return nil, err
	}
	switch {
	case f.Type.Basic == model.TypeString:
		return func(ref string) string { return g.likeFunction + "(" + ref + ", " + lit + ")" }, nil
	case isBool(v):
		return func(ref string) string { return ref + " == " + lit }, nil
	default:
		return func(ref string) string { return ref + ".ToString().Contains(" + lit + ")" }, nil
	}
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func operator(c model.Condition) (string, error) {
	switch c {
	case model.ConditionEqual, model.ConditionIn:
		return "==", nil
	case model.ConditionUnequal:
		return "!=", nil
	case model.ConditionGreaterThan, model.ConditionLessThan,
		model.ConditionGreaterThanOrEqual, model.ConditionLessThanOrEqual:
		return c.Symbol(), nil
	}
	return "", model.NewDiagnostic(model.CodeInternalInvariant, "no comparison operator for condition %s", c)
}

func invalidValue(tok *model.Token) error {
	return model.NewDiagnostic(model.CodeInternalInvariant,
		"condition %s cannot take a value of type %T", tok.Condition, tok.Value)
}

func asDiagnostic(err error) *model.Diagnostic {
	if d, ok := err.(*model.Diagnostic); ok {
		return d
	}
	return model.NewDiagnostic(model.CodeInternalInvariant, "%v", err).Wrap(err)
}
