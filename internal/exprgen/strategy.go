package exprgen

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy decides how references and quantifiers are written.
type Strategy interface {
	// Name identifies the strategy in configuration and history records.
	Name() string

	// Ref writes a dotted member path relative to the innermost open frame,
	// or to the root when no frame is open.
	Ref(s *Scope, path string) string

	// Element refers to the element of the innermost open frame.
	Element(s *Scope) string

	// Quantify wraps body, generated inside frame f, in a null guard and
	// an Any over f's collection.
	Quantify(s *Scope, f Frame, body string) string
}

const (
	StrategyImplicit = "implicit"
	StrategyLambda   = "lambda"
)

// StrategyByName returns the strategy registered under name.
// An empty name selects the implicit strategy.
func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyImplicit:
		return ImplicitScope{}, nil
	case StrategyLambda:
		return LambdaScope{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want %s or %s)", name, StrategyImplicit, StrategyLambda)
}

// ImplicitScope writes unqualified member paths inside each Any body and
// relies on the body being evaluated with the collection element as its
// implicit scope. The element itself is "it".
type ImplicitScope struct{}

func (ImplicitScope) Name() string { return StrategyImplicit }

func (ImplicitScope) Ref(_ *Scope, path string) string { return path }

func (ImplicitScope) Element(*Scope) string { return "it" }

func (ImplicitScope) Quantify(_ *Scope, f Frame, body string) string {
	return guard(f.Collection) + f.Collection + ".Any(" + body + ")"
}

// LambdaScope binds each collection element to a lambda variable. The
// innermost frame uses "i", enclosing frames i1, i2, ... outward.
type LambdaScope struct{}

func (LambdaScope) Name() string { return StrategyLambda }

func (l LambdaScope) Ref(s *Scope, path string) string {
	f, ok := s.Innermost()
	if !ok {
		return path
	}
	return l.Var(s, f) + "." + path
}

func (l LambdaScope) Element(s *Scope) string {
	f, _ := s.Innermost()
	return l.Var(s, f)
}

func (l LambdaScope) Quantify(s *Scope, f Frame, body string) string {
	return guard(f.Collection) + f.Collection + ".Any(" + l.Var(s, f) + " => " + body + ")"
}

// Var names the lambda variable bound by frame f.
func (LambdaScope) Var(s *Scope, f Frame) string {
	outward := s.Total - 1 - f.Index
	if outward <= 0 {
		return "i"
	}
	return "i" + strconv.Itoa(outward)
}

func guard(collection string) string {
	return collection + " != null && "
}
