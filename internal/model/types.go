package model

import (
	"fmt"
	"strings"
)

// BasicType classifies the scalar shape a field's values convert to.
type BasicType string

const (
	TypeString   BasicType = "string"
	TypeInt      BasicType = "int"
	TypeLong     BasicType = "long"
	TypeDouble   BasicType = "double"
	TypeDecimal  BasicType = "decimal"
	TypeBool     BasicType = "bool"
	TypeDateTime BasicType = "datetime"
	TypeDate     BasicType = "date"
	TypeTime     BasicType = "time"
	TypeTimeSpan BasicType = "timespan"
	TypeEnum     BasicType = "enum"
	TypeGuid     BasicType = "guid"
	TypeClass    BasicType = "class"
)

// basicTypes lists every BasicType in declaration order.
var basicTypes = []BasicType{
	TypeString, TypeInt, TypeLong, TypeDouble, TypeDecimal, TypeBool,
	TypeDateTime, TypeDate, TypeTime, TypeTimeSpan, TypeEnum, TypeGuid, TypeClass,
}

// ParseBasicType maps a type name to a BasicType.
// Common aliases used in schema files ("int32", "int64", "float64", "uuid", ...)
// are accepted.
func ParseBasicType(name string) (BasicType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "text":
		return TypeString, nil
	case "int", "int32":
		return TypeInt, nil
	case "long", "int64":
		return TypeLong, nil
	case "double", "float", "float64", "float32":
		return TypeDouble, nil
	case "decimal", "numeric":
		return TypeDecimal, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "datetime", "timestamp":
		return TypeDateTime, nil
	case "date", "dateonly":
		return TypeDate, nil
	case "time", "timeonly":
		return TypeTime, nil
	case "timespan", "duration":
		return TypeTimeSpan, nil
	case "enum":
		return TypeEnum, nil
	case "guid", "uuid":
		return TypeGuid, nil
	case "class", "object":
		return TypeClass, nil
	}
	return "", fmt.Errorf("unknown basic type %q (want one of %v)", name, basicTypes)
}

// Numeric reports whether values of this type are numbers.
func (b BasicType) Numeric() bool {
	switch b {
	case TypeInt, TypeLong, TypeDouble, TypeDecimal:
		return true
	}
	return false
}

// Ordered reports whether the ordering operators (> < >= <=) apply.
func (b BasicType) Ordered() bool {
	switch b {
	case TypeString, TypeBool, TypeGuid, TypeClass:
		return false
	}
	return true
}

// TypeSetting is the target shape of a field.
type TypeSetting struct {
	Basic BasicType `json:"basic" yaml:"basic"`

	// Nullable marks optional value types (int?, DateTime?).
	Nullable bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	// Collection marks a field whose own declared type is a collection
	// of Basic values, e.g. a list of tag strings.
	Collection bool `json:"collection,omitempty" yaml:"collection,omitempty"`

	// EnumValues holds the declared names of an enum field.
	EnumValues []string `json:"enum_values,omitempty" yaml:"enum_values,omitempty"`
}

// ParseTypeSetting parses the compact type notation used by schema files:
// "[]" prefix for collections, "?" suffix for nullable, e.g. "[]string", "int?".
func ParseTypeSetting(s string) (TypeSetting, error) {
	var ts TypeSetting
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "[]"); ok {
		ts.Collection = true
		s = rest
	}
	if rest, ok := strings.CutSuffix(s, "?"); ok {
		ts.Nullable = true
		s = rest
	}
	basic, err := ParseBasicType(s)
	if err != nil {
		return TypeSetting{}, err
	}
	ts.Basic = basic
	return ts, nil
}

func (t TypeSetting) String() string {
	var sb strings.Builder
	if t.Collection {
		sb.WriteString("[]")
	}
	sb.WriteString(string(t.Basic))
	if t.Nullable {
		sb.WriteByte('?')
	}
	return sb.String()
}

// FuzzSetting controls fuzzy (like) matching for a field.
type FuzzSetting struct {
	// NotSupported disables fuzzy matching; like on such a field is rejected.
	NotSupported bool `json:"not_supported,omitempty" yaml:"not_supported,omitempty"`

	// Ignored excludes the field from the default column set of a
	// whole-row fuzzy search. Explicit like clauses still work.
	Ignored bool `json:"ignored,omitempty" yaml:"ignored,omitempty"`
}

// Hop is one navigation step from the table root toward a field.
type Hop struct {
	Name       string `json:"name" yaml:"name"`
	Collection bool   `json:"collection,omitempty" yaml:"collection,omitempty"`
}

func (h Hop) String() string {
	if h.Collection {
		return h.Name + "[]"
	}
	return h.Name
}

// ParseNavigation parses a dotted navigation path where collection hops
// carry a "[]" suffix, e.g. "Customer.Orders[].Items[]".
func ParseNavigation(path string) ([]Hop, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	parts := strings.Split(path, ".")
	hops := make([]Hop, 0, len(parts))
	for _, part := range parts {
		name, collection := strings.CutSuffix(part, "[]")
		if name == "" {
			return nil, fmt.Errorf("navigation %q: empty segment", path)
		}
		hops = append(hops, Hop{Name: name, Collection: collection})
	}
	return hops, nil
}

// FormatNavigation renders hops in the notation ParseNavigation accepts.
func FormatNavigation(hops []Hop) string {
	parts := make([]string, len(hops))
	for i, h := range hops {
		parts[i] = h.String()
	}
	return strings.Join(parts, ".")
}

// Field is one queryable field of a table.
type Field struct {
	// ActivateNames are the aliases a clause may use for this field.
	ActivateNames []string `json:"activate_names" yaml:"activate_names"`

	// Navigation is the root-first relationship path to the type holding
	// the field. Empty for fields local to the root.
	Navigation []Hop `json:"navigation,omitempty" yaml:"navigation,omitempty"`

	ReflectionName string      `json:"reflection_name" yaml:"reflection_name"`
	Title          string      `json:"title" yaml:"title"`
	Fuzz           FuzzSetting `json:"fuzz" yaml:"fuzz"`
	Type           TypeSetting `json:"type" yaml:"type"`

	// IgnorePrefix makes the default activation name the bare reflection
	// name and lets resolution fall back to it.
	IgnorePrefix bool `json:"ignore_prefix,omitempty" yaml:"ignore_prefix,omitempty"`
}

// Path is the full dotted property path from the root, without collection markers.
func (f *Field) Path() string {
	if len(f.Navigation) == 0 {
		return f.ReflectionName
	}
	var sb strings.Builder
	for _, h := range f.Navigation {
		sb.WriteString(h.Name)
		sb.WriteByte('.')
	}
	sb.WriteString(f.ReflectionName)
	return sb.String()
}

// DefaultActivationName is the alias used when none is declared.
func (f *Field) DefaultActivationName() string {
	if f.IgnorePrefix {
		return f.ReflectionName
	}
	return f.Path()
}

// LocalPath walks the navigation from leaf toward root and stops at the
// first collection hop. The result is the deepest suffix of the path that
// can be referenced without quantification.
func (f *Field) LocalPath() string {
	segments := []string{f.ReflectionName}
	for i := len(f.Navigation) - 1; i >= 0; i-- {
		if f.Navigation[i].Collection {
			break
		}
		segments = append(segments, f.Navigation[i].Name)
	}
	for l, r := 0, len(segments)-1; l < r; l, r = l+1, r-1 {
		segments[l], segments[r] = segments[r], segments[l]
	}
	return strings.Join(segments, ".")
}

// CollectionHops counts collection-valued navigation hops.
func (f *Field) CollectionHops() int {
	n := 0
	for _, h := range f.Navigation {
		if h.Collection {
			n++
		}
	}
	return n
}

// Quantifiers is the number of Any(...) frames the field's compiled
// expression carries: one per collection hop, plus one when the field
// itself is a collection.
func (f *Field) Quantifiers() int {
	n := f.CollectionHops()
	if f.Type.Collection {
		n++
	}
	return n
}

// FuzzEligible reports whether the field takes part in a default fuzzy search.
func (f *Field) FuzzEligible() bool {
	return !f.Fuzz.NotSupported && !f.Fuzz.Ignored
}

func (f *Field) String() string {
	nav := FormatNavigation(f.Navigation)
	if nav != "" {
		nav += "."
	}
	return fmt.Sprintf("%s%s(%s)[%s]", nav, f.ReflectionName, strings.Join(f.ActivateNames, ","), f.Type)
}

// Table is one queryable root type.
type Table struct {
	// Name is the full type name the table is looked up by.
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Fields      []*Field `json:"fields" yaml:"fields"`
}
