package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/automodel/internal/model"
)

// TagName is the struct tag FromStruct reads.
//
// The tag is a comma-separated option list:
//
//	names=a|b      activation names
//	title=Text     display title
//	type=date      basic type override (e.g. date or time for a time.Time)
//	enum=A|B       enum names; makes the field an enum
//	noprefix       answer to the bare name when navigated
//	prefix         keep the navigation prefix
//	nofuzz         reject like on the field
//	fuzzignore     leave the field out of default fuzzy searches
//	-              skip the field
const TagName = "automodel"

// Enumerated is implemented by named types that list their enum names.
type Enumerated interface {
	EnumValues() []string
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	durationType   = reflect.TypeOf(time.Duration(0))
	uuidType       = reflect.TypeOf(uuid.UUID{})
	decimalType    = reflect.TypeOf(apd.Decimal{})
	enumeratedType = reflect.TypeOf((*Enumerated)(nil)).Elem()
)

// StructOption configures FromStruct.
type StructOption func(*structConfig)

type structConfig struct {
	name        string
	displayName string
	rules       Rules
}

// WithTableName sets the table name. The default is the Go type name
// qualified by its package name, e.g. "shop.Order".
func WithTableName(name string) StructOption {
	return func(c *structConfig) { c.name = name }
}

// WithDisplayName sets the display name. The default is the bare type name.
func WithDisplayName(name string) StructOption {
	return func(c *structConfig) { c.displayName = name }
}

// WithRules sets the defaulting rules.
func WithRules(r Rules) StructOption {
	return func(c *structConfig) { c.rules = r }
}

// FromStruct derives a table from a struct value or type.
//
// Exported scalar fields become table fields. Struct, pointer-to-struct
// and slice-of-struct fields are navigated; each struct type is entered
// at most once, which also stops self references. Maps, channels and
// functions are skipped, as are fields tagged "-" and untagged fields
// tagged json:"-".
func FromStruct(v any, opts ...StructOption) (*model.Table, error) {
	rt, ok := v.(reflect.Type)
	if !ok {
		rt = reflect.TypeOf(v)
	}
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("from struct: %v is not a struct type", rt)
	}

	cfg := structConfig{name: rt.String(), displayName: rt.Name()}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &walker{
		b:       newBuilder(cfg.name, cfg.displayName, cfg.rules, nil),
		visited: map[reflect.Type]bool{rt: true},
	}
	if err := w.walk(rt, nil); err != nil {
		return nil, fmt.Errorf("from struct %s: %w", cfg.name, err)
	}
	return w.b.build(), nil
}

type walker struct {
	b       *builder
	visited map[reflect.Type]bool
}

func (w *walker) walk(rt reflect.Type, nav []model.Hop) error {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		raw, tagged := sf.Tag.Lookup(TagName)
		if raw == "-" {
			continue
		}
		if !tagged && sf.Tag.Get("json") == "-" {
			continue
		}
		tag, err := parseTag(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", sf.Name, err)
		}

		ft := sf.Type
		if target, collection, ok := navigationTarget(ft); ok {
			if w.visited[target] {
				continue
			}
			w.visited[target] = true
			hops := append(append([]model.Hop(nil), nav...), model.Hop{Name: sf.Name, Collection: collection})
			if err := w.walk(target, hops); err != nil {
				return err
			}
			continue
		}

		ts, ok := typeSetting(ft)
		if !ok {
			continue
		}
		if tag.typ != "" {
			basic, err := model.ParseBasicType(tag.typ)
			if err != nil {
				return fmt.Errorf("field %s: %w", sf.Name, err)
			}
			ts.Basic = basic
		}
		if len(tag.enum) > 0 {
			ts.Basic = model.TypeEnum
			ts.EnumValues = tag.enum
		}
		if ts.Basic == model.TypeEnum && len(ts.EnumValues) == 0 {
			return fmt.Errorf("field %s: enum field needs enum values", sf.Name)
		}

		f := &model.Field{
			ActivateNames:  tag.names,
			Navigation:     append([]model.Hop(nil), nav...),
			ReflectionName: sf.Name,
			Title:          tag.title,
			Type:           ts,
			Fuzz:           model.FuzzSetting{NotSupported: tag.noFuzz, Ignored: tag.fuzzIgnored},
		}
		w.b.add(f, tag.ignorePrefix)
	}
	return nil
}

// navigationTarget reports whether ft is navigated and returns the
// struct type behind it.
func navigationTarget(ft reflect.Type) (reflect.Type, bool, bool) {
	collection := false
	if ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array {
		collection = true
		ft = ft.Elem()
	}
	for ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	if ft.Kind() != reflect.Struct || isScalarStruct(ft) {
		return nil, false, false
	}
	return ft, collection, true
}

func isScalarStruct(t reflect.Type) bool {
	return t == timeType || t == decimalType
}

// typeSetting maps a Go type to a field type. ok is false for types
// that cannot be queried.
func typeSetting(ft reflect.Type) (model.TypeSetting, bool) {
	var ts model.TypeSetting
	if ft.Kind() == reflect.Pointer {
		ts.Nullable = true
		ft = ft.Elem()
	}
	if (ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array) && ft != uuidType && ft.Elem().Kind() != reflect.Uint8 {
		ts.Collection = true
		ft = ft.Elem()
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
	}

	if ft.Implements(enumeratedType) {
		ts.Basic = model.TypeEnum
		ts.EnumValues = reflect.Zero(ft).Interface().(Enumerated).EnumValues()
		return ts, true
	}

	switch ft {
	case timeType:
		ts.Basic = model.TypeDateTime
		return ts, true
	case durationType:
		ts.Basic = model.TypeTimeSpan
		return ts, true
	case uuidType:
		ts.Basic = model.TypeGuid
		return ts, true
	case decimalType:
		ts.Basic = model.TypeDecimal
		return ts, true
	}

	switch ft.Kind() {
	case reflect.String:
		ts.Basic = model.TypeString
	case reflect.Bool:
		ts.Basic = model.TypeBool
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		ts.Basic = model.TypeInt
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		ts.Basic = model.TypeLong
	case reflect.Float32, reflect.Float64:
		ts.Basic = model.TypeDouble
	default:
		return ts, false
	}
	return ts, true
}

type fieldTag struct {
	names        []string
	title        string
	typ          string
	enum         []string
	ignorePrefix *bool
	noFuzz       bool
	fuzzIgnored  bool
}

func parseTag(raw string) (fieldTag, error) {
	var tag fieldTag
	if raw == "" {
		return tag, nil
	}
	for _, opt := range strings.Split(raw, ",") {
		opt = strings.TrimSpace(opt)
		key, value, hasValue := strings.Cut(opt, "=")
		switch key {
		case "":
		case "names":
			tag.names = splitList(value)
		case "title":
			tag.title = value
		case "type":
			tag.typ = value
		case "enum":
			tag.enum = splitList(value)
		case "noprefix", "prefix":
			ip := key == "noprefix"
			tag.ignorePrefix = &ip
		case "nofuzz":
			tag.noFuzz = true
		case "fuzzignore":
			tag.fuzzIgnored = true
		default:
			if hasValue {
				return tag, fmt.Errorf("unknown %s tag option %q", TagName, key)
			}
			return tag, fmt.Errorf("unknown %s tag flag %q", TagName, key)
		}
	}
	return tag, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
