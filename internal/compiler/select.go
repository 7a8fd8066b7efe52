package compiler

import (
	"strings"

	"github.com/roach88/automodel/internal/model"
	"github.com/roach88/automodel/internal/registry"
)

// SelectSeparator separates column names in SelectColumns and Fuzzy.
const SelectSeparator = ","

// SelectColumns builds a projection such as "new { Id, Customer.Name }"
// from a comma-separated list of activation names. With except set the
// projection holds every projectable field not named in columns.
//
// Fields reached through a collection cannot be projected. In except
// mode they are left out; when named explicitly they are an error.
func (c *Compiler) SelectColumns(typeName, columns string, except bool) (string, error) {
	table, err := c.registry.Get(typeName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(columns) == "" {
		return "", model.NewDiagnostic(model.CodeMalformedClause, "no columns selected")
	}

	named, err := resolveColumns(table, columns)
	if err != nil {
		return "", err
	}

	var paths []string
	if except {
		skip := make(map[*model.Field]bool, len(named))
		for _, f := range named {
			skip[f] = true
		}
		for _, f := range table.Fields() {
			if skip[f] || f.CollectionHops() > 0 {
				continue
			}
			paths = appendPath(paths, f.Path())
		}
	} else {
		for _, f := range named {
			if f.CollectionHops() > 0 {
				return "", model.NewDiagnostic(model.CodeConditionNotSupported,
					"field %s is reached through a collection and cannot be selected", f.Path())
			}
			paths = appendPath(paths, f.Path())
		}
	}
	if len(paths) == 0 {
		return "", model.NewDiagnostic(model.CodeMalformedClause, "selection of %q is empty", columns)
	}

	expr := "new { " + strings.Join(paths, ", ") + " }"
	c.logger.Debug("compiled selection", "table", typeName, "columns", columns, "except", except, "expression", expr)
	return expr, nil
}

func appendPath(paths []string, p string) []string {
	for _, existing := range paths {
		if existing == p {
			return paths
		}
	}
	return append(paths, p)
}

// resolveColumns resolves every name in a comma-separated column list.
// All unresolved names are reported together.
func resolveColumns(table *registry.Table, columns string) ([]*model.Field, error) {
	var (
		fields  []*model.Field
		missing []string
		errs    []error
	)
	for _, name := range strings.Split(columns, SelectSeparator) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, err := table.Resolve(name)
		if err != nil {
			if registry.IsAmbiguous(err) {
				errs = append(errs, err)
			}
			missing = append(missing, name)
			continue
		}
		fields = append(fields, f)
	}
	if len(missing) == 0 {
		return fields, nil
	}

	if len(errs) > 0 {
		return nil, resolveDiagnostic(errs[0])
	}
	return nil, model.NewDiagnostic(model.CodeFieldNotFound,
		"columns %s not found in %s (supported: %s)",
		strings.Join(missing, ", "), table.Name(), strings.Join(table.ActivateNames(), ", "))
}
