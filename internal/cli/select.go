package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/automodel/internal/model"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Except bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <table> <columns>",
		Short: "Build a projection from activation names",
		Long: `Build a projection such as "new { Status, Customer.Name }" from a
comma-separated list of activation names. With --except the listed
columns are excluded and every other field is projected.

Examples:
  automodel select -s order.yaml Shop.Order "status, Name"
  automodel select -s order.yaml Shop.Order "note" --except`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Except, "except", false, "project every field except the listed ones")

	return cmd
}

func runSelect(opts *SelectOptions, table, columns string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	e, cliErr := loadEnv(opts.RootOptions)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	if cliErr := e.checkTable(table); cliErr != nil {
		return fail(formatter, cliErr)
	}

	text, err := e.compiler.SelectColumns(table, columns, opts.Except)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeProjection, err.Error(), string(model.CodeOf(err)))
	}
	if formatter.JSON() {
		return formatter.Success(map[string]string{"table": table, "text": text})
	}
	return formatter.Success(text)
}
