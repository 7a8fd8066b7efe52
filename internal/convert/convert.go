package convert

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"github.com/roach88/automodel/internal/model"
)

// DefaultSeparator splits multi-valued clause values.
const DefaultSeparator = ","

// Converter converts token values.
type Converter struct {
	Separator string
	Clock     Clock
}

// New creates a converter. A nil clock means the system clock.
func New(sep string, clock Clock) *Converter {
	if sep == "" {
		sep = DefaultSeparator
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Converter{Separator: sep, Clock: clock}
}

// Convert sets tok.Value from its raw value text. The token must be
// resolved and classified. Failures are attached to the token.
func (c *Converter) Convert(tok *model.Token) error {
	f := tok.Field
	if f == nil || tok.Condition == model.ConditionNone {
		return tok.Fail(model.NewDiagnostic(model.CodeInternalInvariant, "convert called on unclassified token %q", tok.FieldStr))
	}

	switch tok.Condition {
	case model.ConditionIs:
		nt, err := ParseNullTest(tok.ValueStr)
		if err != nil {
			return tok.Fail(conversionDiagnostic(err))
		}
		tok.Value = nt
		return nil
	case model.ConditionExpLike:
		pattern := strings.TrimSpace(NarrowPunctuation(tok.ValueStr))
		if pattern == "" {
			return tok.Fail(conversionDiagnostic(conversionError(tok.ValueStr, f.Type.Basic, "empty explike pattern")))
		}
		tok.Value = pattern
		return nil
	}

	if tok.Features.Has(model.FeatureMulti) {
		items := c.Items(tok)
		values := make([]any, 0, len(items))
		for i, item := range items {
			if item == "" {
				return tok.Fail(conversionDiagnostic(conversionError(tok.ValueStr, f.Type.Basic, "item %d is empty", i+1)))
			}
			v, err := c.Value(item, f, tok.Features)
			if err != nil {
				return tok.Fail(conversionDiagnostic(err))
			}
			values = append(values, v)
		}
		tok.Value = values
		return nil
	}

	raw := tok.ValueStr
	if tok.Items != nil {
		if len(tok.Items) != 1 {
			return tok.Fail(conversionDiagnostic(conversionError(tok.ValueStr, f.Type.Basic,
				"condition %s takes a single value, got %d", tok.Condition, len(tok.Items))))
		}
		raw = tok.Items[0]
	}

	v, err := c.Value(raw, f, tok.Features)
	if err != nil {
		return tok.Fail(conversionDiagnostic(err))
	}
	if _, ok := v.([]any); ok {
		tok.Features |= model.FeatureMulti
	}
	tok.Value = v
	return nil
}

func conversionDiagnostic(err error) *model.Diagnostic {
	return model.NewDiagnostic(model.CodeValueConversion, "%v", err).Wrap(err)
}

// Items splits a multi-valued token into trimmed items. Empty items are
// kept so that Convert can report them.
func (c *Converter) Items(tok *model.Token) []string {
	if tok.Items != nil {
		return tok.Items
	}
	parts := strings.Split(tok.ValueStr, c.Separator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Value converts one raw value for field f.
func (c *Converter) Value(raw string, f *model.Field, features model.Features) (any, error) {
	fuzzy := features.Has(model.FeatureFuzzy)
	typ := f.Type.Basic
	trimmed := strings.TrimSpace(raw)

	switch typ {
	case model.TypeString:
		if fuzzy {
			return FuzzyPattern(raw), nil
		}
		return raw, nil

	case model.TypeInt, model.TypeLong:
		if fuzzy {
			return raw, nil
		}
		bits := 64
		if typ == model.TypeInt {
			bits = 32
		}
		n, err := strconv.ParseInt(trimmed, 10, bits)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", unwrapNumError(err))
		}
		return n, nil

	case model.TypeDouble:
		if fuzzy {
			return raw, nil
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", unwrapNumError(err))
		}
		return n, nil

	case model.TypeDecimal:
		if fuzzy {
			return raw, nil
		}
		d, _, err := apd.NewFromString(trimmed)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", err)
		}
		if d.Form != apd.Finite {
			return nil, conversionError(raw, typ, "not a finite number")
		}
		return d, nil

	case model.TypeBool:
		if b, ok := ParseBool(trimmed); ok {
			return b, nil
		}
		if fuzzy {
			return raw, nil
		}
		return nil, conversionError(raw, typ, "")

	case model.TypeDateTime:
		if fuzzy {
			return raw, nil
		}
		t, err := c.ParseDateTime(trimmed)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", err)
		}
		return t, nil

	case model.TypeDate:
		if fuzzy {
			return raw, nil
		}
		t, err := c.ParseDate(trimmed)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", err)
		}
		return t, nil

	case model.TypeTime:
		if fuzzy {
			return raw, nil
		}
		t, err := ParseTimeOfDay(trimmed)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", err)
		}
		return t, nil

	case model.TypeTimeSpan:
		if fuzzy {
			return raw, nil
		}
		d, err := ParseTimeSpan(trimmed)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", err)
		}
		return d, nil

	case model.TypeEnum:
		if fuzzy {
			return FuzzyEnum(trimmed, f.Type.EnumValues), nil
		}
		name, ok := LookupEnum(trimmed, f.Type.EnumValues)
		if !ok {
			return nil, conversionError(raw, typ, "not one of %s", strings.Join(f.Type.EnumValues, ", "))
		}
		return name, nil

	case model.TypeGuid:
		if fuzzy {
			return raw, nil
		}
		id, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, conversionError(raw, typ, "%w", err)
		}
		return id, nil
	}

	return nil, conversionError(raw, typ, "values of this type cannot be converted")
}

func unwrapNumError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}

// FuzzyPattern wraps v as %v% unless it already carries a wildcard.
func FuzzyPattern(v string) string {
	if strings.Contains(v, "%") {
		return v
	}
	return "%" + v + "%"
}

// NarrowPunctuation folds full-width characters to their ASCII forms.
func NarrowPunctuation(s string) string {
	return width.Narrow.String(s)
}

// ParseBool accepts true/false, 1/0, yes/no and 是/否, ignoring case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "是":
		return true, true
	case "false", "0", "no", "否":
		return false, true
	}
	return false, false
}

// ParseNullTest parses the value of an "is" clause: "null" or "not null".
func ParseNullTest(s string) (model.NullTest, error) {
	fields := strings.Fields(strings.ToLower(s))
	switch {
	case len(fields) == 1 && fields[0] == "null":
		return model.NullTest{}, nil
	case len(fields) == 2 && fields[0] == "not" && fields[1] == "null":
		return model.NullTest{Not: true}, nil
	}
	return model.NullTest{}, &ConversionError{Value: s, Type: "null test", Err: errNullTest}
}

var errNullTest = errors.New(`want "null" or "not null"`)

// LookupEnum finds the declared enum name matching s, ignoring case.
func LookupEnum(s string, values []string) (string, bool) {
	key := cases.Fold().String(s)
	for _, v := range values {
		if cases.Fold().String(v) == key {
			return v, true
		}
	}
	return "", false
}

// FuzzyEnum returns every declared enum name containing s, ignoring case,
// as a []any. When nothing matches it returns model.NoMatch.
func FuzzyEnum(s string, values []string) any {
	key := cases.Fold().String(strings.Trim(s, "%"))
	var out []any
	for _, v := range values {
		if strings.Contains(cases.Fold().String(v), key) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return model.NoMatch{}
	}
	return out
}
