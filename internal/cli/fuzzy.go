package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/automodel/internal/model"
)

// FuzzyOptions holds flags for the fuzzy command.
type FuzzyOptions struct {
	*RootOptions
	Columns string
	Record  string
}

// NewFuzzyCommand creates the fuzzy command.
func NewFuzzyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FuzzyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fuzzy <table> <text>",
		Short: "Search text across fuzzy-eligible columns",
		Long: `Build a like clause per column and compile them joined with ||.
Without --columns every fuzzy-eligible field that is not ignored is used.

Examples:
  automodel fuzzy -s order.yaml Shop.Order pa
  automodel fuzzy -s order.yaml Shop.Order pa --columns "note, status"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzzy(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Columns, "columns", "", "comma-separated activation names to search")
	cmd.Flags().StringVar(&opts.Record, "record", "", "append the result to this history database")

	return cmd
}

func runFuzzy(opts *FuzzyOptions, table, text string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	e, cliErr := loadEnv(opts.RootOptions)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	if cliErr := e.checkTable(table); cliErr != nil {
		return fail(formatter, cliErr)
	}

	res, err := e.compiler.Fuzzy(table, text, opts.Columns)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeProjection, err.Error(), string(model.CodeOf(err)))
	}

	var recordID string
	if opts.Record != "" {
		rec, cliErr := record(cmd.Context(), opts.Record, res)
		if cliErr != nil {
			return fail(formatter, cliErr)
		}
		recordID = rec.ID
	}
	return outputResult(formatter, res, recordID)
}
