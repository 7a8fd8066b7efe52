package registry

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/automodel/internal/model"
)

// Table is the sealed, read-only view of a registered table.
type Table struct {
	def      *model.Table
	foldCase bool

	// exact maps every activation name to the fields declaring it.
	exact map[string][]*model.Field

	// bare maps reflection names of IgnorePrefix fields to those fields.
	bare map[string][]*model.Field
}

func newTable(def *model.Table, foldCase bool) *Table {
	t := &Table{
		def:      def,
		foldCase: foldCase,
		exact:    make(map[string][]*model.Field),
		bare:     make(map[string][]*model.Field),
	}
	for _, f := range def.Fields {
		for _, name := range f.ActivateNames {
			k := t.key(name)
			t.exact[k] = appendUnique(t.exact[k], f)
		}
		if f.IgnorePrefix {
			k := t.key(f.ReflectionName)
			t.bare[k] = appendUnique(t.bare[k], f)
		}
	}
	return t
}

func appendUnique(fields []*model.Field, f *model.Field) []*model.Field {
	for _, existing := range fields {
		if existing == f {
			return fields
		}
	}
	return append(fields, f)
}

// key normalizes a name for index lookups.
func (t *Table) key(name string) string {
	name = norm.NFC.String(name)
	if t.foldCase {
		return cases.Fold().String(name)
	}
	return name
}

// Name returns the full type name.
func (t *Table) Name() string { return t.def.Name }

// DisplayName returns the display name, falling back to the type name.
func (t *Table) DisplayName() string {
	if t.def.DisplayName != "" {
		return t.def.DisplayName
	}
	return t.def.Name
}

// Fields returns the table's fields in registration order.
func (t *Table) Fields() []*model.Field {
	return append([]*model.Field(nil), t.def.Fields...)
}

// Resolve maps clause field text to a field.
//
// Exact activation names win. Bare reflection names of IgnorePrefix
// fields are consulted only when no exact name matches. More than one
// candidate at the deciding step is reported as ambiguous, never picked.
func (t *Table) Resolve(text string) (*model.Field, error) {
	k := t.key(text)
	if fields := t.exact[k]; len(fields) > 0 {
		return t.single(text, fields)
	}
	if fields := t.bare[k]; len(fields) > 0 {
		return t.single(text, fields)
	}
	return nil, &FieldError{
		Kind:       FieldNotFound,
		Table:      t.def.Name,
		Text:       text,
		Candidates: t.ActivateNames(),
	}
}

func (t *Table) single(text string, fields []*model.Field) (*model.Field, error) {
	if len(fields) == 1 {
		return fields[0], nil
	}
	candidates := make([]string, len(fields))
	for i, f := range fields {
		candidates[i] = f.Path()
	}
	return nil, &FieldError{
		Kind:       FieldAmbiguous,
		Table:      t.def.Name,
		Text:       text,
		Candidates: candidates,
	}
}

// Field resolves text and returns nil on any failure.
func (t *Table) Field(text string) *model.Field {
	f, err := t.Resolve(text)
	if err != nil {
		return nil
	}
	return f
}

// ActivateNames lists every activation name of the table, sorted.
func (t *Table) ActivateNames() []string {
	var names []string
	for _, f := range t.def.Fields {
		names = append(names, f.ActivateNames...)
	}
	sort.Strings(names)
	return names
}

// AmbiguousNames lists activation names shared by more than one field.
func (t *Table) AmbiguousNames() []string {
	var names []string
	for k, fields := range t.exact {
		if len(fields) > 1 {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
