package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/automodel/internal/model"
	"github.com/roach88/automodel/internal/registry"
)

// Rules are the registration-wide defaults.
type Rules struct {
	// IgnorePrefix makes navigated fields answer to their bare
	// reflection name unless they or their table say otherwise.
	IgnorePrefix bool `yaml:"ignore_prefix" json:"ignore_prefix"`

	// AutoAdjust keeps the prefix of a navigated field whose bare name
	// is taken by another field of the table.
	AutoAdjust bool `yaml:"auto_adjust" json:"auto_adjust"`
}

// File is the top level of a definition file.
type File struct {
	IgnorePrefix bool         `yaml:"ignore_prefix" json:"ignore_prefix"`
	AutoAdjust   bool         `yaml:"auto_adjust" json:"auto_adjust"`
	Tables       []Definition `yaml:"tables" json:"tables"`
}

// Rules returns the file-wide rules.
func (f *File) Rules() Rules {
	return Rules{IgnorePrefix: f.IgnorePrefix, AutoAdjust: f.AutoAdjust}
}

// Definition describes one table.
type Definition struct {
	Name        string `yaml:"name" json:"name"`
	DisplayName string `yaml:"display_name,omitempty" json:"display_name,omitempty"`

	// IgnorePrefix overrides Rules.IgnorePrefix for the table's fields.
	IgnorePrefix *bool `yaml:"ignore_prefix,omitempty" json:"ignore_prefix,omitempty"`

	Fields []FieldDefinition `yaml:"fields" json:"fields"`
}

// FieldDefinition describes one field in file form.
type FieldDefinition struct {
	// Name is the reflection name.
	Name string `yaml:"name" json:"name"`

	// Navigation is the path to the type holding the field, collection
	// hops marked with "[]", e.g. "Items[].Product".
	Navigation string `yaml:"navigation,omitempty" json:"navigation,omitempty"`

	// Type uses the compact notation: "[]string", "int?", "enum".
	Type string   `yaml:"type" json:"type"`
	Enum []string `yaml:"enum,omitempty" json:"enum,omitempty"`

	Names []string `yaml:"names,omitempty" json:"names,omitempty"`
	Title string   `yaml:"title,omitempty" json:"title,omitempty"`

	IgnorePrefix *bool `yaml:"ignore_prefix,omitempty" json:"ignore_prefix,omitempty"`
	NoFuzz       bool  `yaml:"nofuzz,omitempty" json:"nofuzz,omitempty"`
	FuzzIgnored  bool  `yaml:"fuzz_ignored,omitempty" json:"fuzz_ignored,omitempty"`
}

// Field converts the definition into a model field without defaults.
func (d FieldDefinition) Field() (*model.Field, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("field name is required")
	}
	hops, err := model.ParseNavigation(d.Navigation)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", d.Name, err)
	}
	ts, err := model.ParseTypeSetting(d.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", d.Name, err)
	}
	if ts.Basic == model.TypeEnum {
		if len(d.Enum) == 0 {
			return nil, fmt.Errorf("field %s: enum field needs enum values", d.Name)
		}
		ts.EnumValues = append([]string(nil), d.Enum...)
	}
	return &model.Field{
		ActivateNames:  append([]string(nil), d.Names...),
		Navigation:     hops,
		ReflectionName: d.Name,
		Title:          d.Title,
		Type:           ts,
		Fuzz:           model.FuzzSetting{NotSupported: d.NoFuzz, Ignored: d.FuzzIgnored},
	}, nil
}

// Build converts a definition into a table, applying rules.
func Build(def Definition, rules Rules) (*model.Table, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("table name is required")
	}
	b := newBuilder(def.Name, def.DisplayName, rules, def.IgnorePrefix)
	for _, fd := range def.Fields {
		f, err := fd.Field()
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", def.Name, err)
		}
		b.add(f, fd.IgnorePrefix)
	}
	return b.build(), nil
}

// Register builds every table of f and registers it.
func Register(reg *registry.Registry, f *File) error {
	for _, def := range f.Tables {
		t, err := Build(def, f.Rules())
		if err != nil {
			return err
		}
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// builder applies the defaulting rules. Fields are collected in
// declaration order and the prefix rules are settled by build once every
// field is known.
type builder struct {
	rules        Rules
	ignorePrefix *bool
	table        *model.Table
}

func newBuilder(name, displayName string, rules Rules, ignorePrefix *bool) *builder {
	return &builder{
		rules:        rules,
		ignorePrefix: ignorePrefix,
		table:        &model.Table{Name: name, DisplayName: displayName},
	}
}

func (b *builder) add(f *model.Field, ignorePrefix *bool) {
	ip := b.rules.IgnorePrefix
	if b.ignorePrefix != nil {
		ip = *b.ignorePrefix
	}
	if ignorePrefix != nil {
		ip = *ignorePrefix
	}
	// root fields have no prefix; a navigated Id always keeps its prefix
	if len(f.Navigation) == 0 || strings.EqualFold(f.ReflectionName, "id") {
		ip = false
	}
	f.IgnorePrefix = ip

	if f.Type.Collection || f.Type.Basic == model.TypeClass {
		f.Fuzz.NotSupported = true
	}
	b.table.Fields = append(b.table.Fields, f)
}

// build returns the table. With AutoAdjust, a navigated field keeps its
// prefix when its bare name is taken by any field declared with a fixed
// name, or by an earlier field that already dropped its prefix.
func (b *builder) build() *model.Table {
	if !b.rules.AutoAdjust {
		return b.table
	}

	owners := make(map[string]*model.Field)
	claim := func(name string, f *model.Field) {
		if _, ok := owners[name]; !ok {
			owners[name] = f
		}
	}
	for _, f := range b.table.Fields {
		for _, name := range f.ActivateNames {
			claim(name, f)
		}
		if len(f.ActivateNames) == 0 && !f.IgnorePrefix {
			claim(f.DefaultActivationName(), f)
		}
	}

	for _, f := range b.table.Fields {
		if !f.IgnorePrefix {
			continue
		}
		if owner, ok := owners[f.ReflectionName]; ok && owner != f {
			f.IgnorePrefix = false
			if len(f.ActivateNames) == 0 {
				claim(f.DefaultActivationName(), f)
			}
			continue
		}
		claim(f.ReflectionName, f)
	}
	return b.table
}
