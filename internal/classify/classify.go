// Package classify maps a clause's condition symbol to a Condition and
// detects the implicit feature flags of the clause.
package classify

import (
	"strings"

	"github.com/roach88/automodel/internal/model"
)

// DefaultSeparator splits multi-valued clause values.
const DefaultSeparator = ","

var symbols = map[string]model.Condition{
	"=":       model.ConditionEqual,
	"like":    model.ConditionLike,
	"in":      model.ConditionIn,
	">":       model.ConditionGreaterThan,
	"<":       model.ConditionLessThan,
	">=":      model.ConditionGreaterThanOrEqual,
	"<=":      model.ConditionLessThanOrEqual,
	"!=":      model.ConditionUnequal,
	"explike": model.ConditionExpLike,
	"notlike": model.ConditionNotLike,
	"is":      model.ConditionIs,
}

// Lookup maps a condition symbol to its Condition. Word symbols match
// case-insensitively.
func Lookup(symbol string) (model.Condition, bool) {
	c, ok := symbols[strings.ToLower(symbol)]
	return c, ok
}

// Classifier classifies resolved tokens.
type Classifier struct {
	Separator string
}

// New creates a classifier splitting multi values on sep.
func New(sep string) *Classifier {
	if sep == "" {
		sep = DefaultSeparator
	}
	return &Classifier{Separator: sep}
}

// Classify sets Condition and Features on a token whose Field is resolved.
// Failures are attached to the token and returned.
func (c *Classifier) Classify(tok *model.Token) error {
	cond, ok := Lookup(tok.ConditionStr)
	if !ok {
		tok.Condition = model.ConditionNone
		return tok.Fail(model.NewDiagnostic(model.CodeUnknownCondition,
			"condition %q is not recognized (supported: %s)", tok.ConditionStr, strings.Join(model.Symbols(), " ")))
	}

	var features model.Features
	if tok.Negated {
		features ^= model.FeatureNot
	}
	if cond == model.ConditionNotLike {
		cond = model.ConditionLike
		features ^= model.FeatureNot
	}
	if cond == model.ConditionIn && c.multiValued(tok) {
		features |= model.FeatureMulti
	}

	f := tok.Field
	if f == nil {
		return tok.Fail(model.NewDiagnostic(model.CodeInternalInvariant, "classify called on unresolved token %q", tok.FieldStr))
	}
	if cond == model.ConditionLike {
		if f.Fuzz.NotSupported {
			return tok.Fail(model.NewDiagnostic(model.CodeConditionNotSupported,
				"field %s does not support like", f.Path()))
		}
		features |= model.FeatureFuzzy
	}
	if cond.Ordering() && !f.Type.Basic.Ordered() {
		return tok.Fail(model.NewDiagnostic(model.CodeConditionNotSupported,
			"condition %s is not supported for %s field %s", cond, f.Type.Basic, f.Path()))
	}
	if cond == model.ConditionExpLike && f.Type.Basic != model.TypeString {
		return tok.Fail(model.NewDiagnostic(model.CodeConditionNotSupported,
			"explike requires a string field, %s is %s", f.Path(), f.Type.Basic))
	}

	tok.Condition = cond
	tok.Features = features
	return nil
}

// multiValued reports whether the value holds more than one item,
// counting empty ones.
func (c *Classifier) multiValued(tok *model.Token) bool {
	if tok.Items != nil {
		return len(tok.Items) > 1
	}
	return strings.Contains(tok.ValueStr, c.Separator)
}
