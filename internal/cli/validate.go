package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// TableSummary is one table in validate output.
type TableSummary struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Fields      int      `json:"fields"`
	Ambiguous   []string `json:"ambiguous,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Schema string         `json:"schema"`
	Tables []TableSummary `json:"tables"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a schema file",
		Long: `Load the schema file, apply the prefix rules and register every table.

Reports parse errors with their source position, and activation names
that resolve to more than one field.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	e, cliErr := loadEnv(opts)
	if cliErr != nil {
		if !formatter.JSON() {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			fmt.Fprintln(formatter.Writer)
		}
		return fail(formatter, cliErr)
	}

	result := ValidationResult{Valid: true, Schema: opts.Schema}
	for _, def := range e.file.Tables {
		t, _ := e.registry.Lookup(def.Name)
		result.Tables = append(result.Tables, TableSummary{
			Name:        t.Name(),
			DisplayName: t.DisplayName(),
			Fields:      len(t.Fields()),
			Ambiguous:   t.AmbiguousNames(),
		})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %s: %d table(s)\n", opts.Schema, len(result.Tables))
	for _, t := range result.Tables {
		fmt.Fprintf(w, "  %s: %d field(s)\n", t.Name, t.Fields)
		for _, name := range t.Ambiguous {
			fmt.Fprintf(w, "    warning: %q names more than one field\n", name)
		}
	}
	return nil
}
