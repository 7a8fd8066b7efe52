package compiler

import (
	"strings"

	"github.com/roach88/automodel/internal/model"
	"github.com/roach88/automodel/internal/registry"
)

// Fuzzy searches text across several fields at once. It builds one like
// clause per field, joins them with ||, and compiles the result.
//
// columns is a comma-separated list of activation names; when empty every
// fuzz-eligible field of the table is searched. Naming a field that does
// not support like is an error.
func (c *Compiler) Fuzzy(typeName, text, columns string) (*Result, error) {
	table, err := c.registry.Get(typeName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, model.NewDiagnostic(model.CodeMalformedClause, "fuzzy text is empty")
	}

	var fields []*model.Field
	if strings.TrimSpace(columns) != "" {
		fields, err = resolveColumns(table, columns)
		if err != nil {
			return nil, err
		}
		var unsupported []string
		for _, f := range fields {
			if f.Fuzz.NotSupported {
				unsupported = append(unsupported, f.Path())
			}
		}
		if len(unsupported) > 0 {
			return nil, model.NewDiagnostic(model.CodeConditionNotSupported,
				"fuzzy search is not supported for %s", strings.Join(unsupported, ", "))
		}
	} else {
		for _, f := range table.Fields() {
			if f.FuzzEligible() {
				fields = append(fields, f)
			}
		}
	}
	if len(fields) == 0 {
		return nil, model.NewDiagnostic(model.CodeFieldNotFound, "%s has no fields to search", table.Name())
	}

	value := escapeValue(text)
	clauses := make([]string, 0, len(fields))
	for _, f := range fields {
		name, ok := clauseName(table, f)
		if !ok {
			return nil, model.NewDiagnostic(model.CodeFieldAmbiguous,
				"field %s has no activation name that resolves to it alone", f.Path())
		}
		clauses = append(clauses, "("+name+` like "`+value+`")`)
	}
	return c.Compile(typeName, strings.Join(clauses, " || "))
}

// clauseName picks the name a generated clause refers to f by: the
// default activation name when it resolves to f, otherwise the first
// declared alias that does.
func clauseName(table *registry.Table, f *model.Field) (string, bool) {
	candidates := append([]string{f.DefaultActivationName()}, f.ActivateNames...)
	for _, name := range candidates {
		if strings.ContainsAny(name, " \t\"()&|[],!") {
			continue
		}
		if got, err := table.Resolve(name); err == nil && got == f {
			return name, true
		}
	}
	return "", false
}

func escapeValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
