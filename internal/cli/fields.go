package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/automodel/internal/model"
)

// FieldInfo describes one field in fields output.
type FieldInfo struct {
	Path        string   `json:"path"`
	Navigation  string   `json:"navigation,omitempty"`
	Names       []string `json:"names"`
	Type        string   `json:"type"`
	Title       string   `json:"title,omitempty"`
	Quantifiers int      `json:"quantifiers"`
	Fuzzy       string   `json:"fuzzy"` // "yes", "ignored" or "no"
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <table>",
		Short: "List the fields and activation names of a table",
		Example: `  automodel fields -s order.yaml Shop.Order
  automodel fields -s order.cue Shop.Order --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(rootOpts, args[0], cmd)
		},
	}
}

func runFields(opts *RootOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, cliErr := loadEnv(opts)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	if cliErr := e.checkTable(table); cliErr != nil {
		return fail(formatter, cliErr)
	}

	t, _ := e.registry.Lookup(table)
	infos := make([]FieldInfo, 0, len(t.Fields()))
	for _, f := range t.Fields() {
		infos = append(infos, fieldInfo(f))
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{
			"table":   t.Name(),
			"display": t.DisplayName(),
			"fields":  infos,
		})
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s (%s)\n\n", t.Name(), t.DisplayName())
	fmt.Fprintln(w, "PATH\tNAMES\tTYPE\tANY\tFUZZY")
	for _, fi := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", fi.Path, strings.Join(fi.Names, ", "), fi.Type, fi.Quantifiers, fi.Fuzzy)
	}
	if ambiguous := t.AmbiguousNames(); len(ambiguous) > 0 {
		fmt.Fprintf(w, "\nAmbiguous names: %s\n", strings.Join(ambiguous, ", "))
	}
	return w.Flush()
}

func fieldInfo(f *model.Field) FieldInfo {
	fuzzy := "yes"
	switch {
	case f.Fuzz.NotSupported:
		fuzzy = "no"
	case f.Fuzz.Ignored:
		fuzzy = "ignored"
	}
	return FieldInfo{
		Path:        f.Path(),
		Navigation:  model.FormatNavigation(f.Navigation),
		Names:       f.ActivateNames,
		Type:        f.Type.String(),
		Title:       f.Title,
		Quantifiers: f.Quantifiers(),
		Fuzzy:       fuzzy,
	}
}
