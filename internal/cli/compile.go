package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/automodel/internal/compiler"
	"github.com/roach88/automodel/internal/exprgen"
	"github.com/roach88/automodel/internal/history"
	"github.com/roach88/automodel/internal/model"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Strategy   string
	Parameters bool
	Record     string // history database path
}

// CompileOutput is the JSON payload of compile and fuzzy.
type CompileOutput struct {
	Table       string              `json:"table"`
	Strategy    string              `json:"strategy"`
	Input       string              `json:"input"`
	Text        string              `json:"text"`
	Params      []string            `json:"params,omitempty"`
	Diagnostics []*model.Diagnostic `json:"diagnostics,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <table> <filter>",
		Short: "Compile filter text to a predicate expression",
		Long: `Compile filter text against a table declared in the schema file.

Clauses that fail keep their raw text in the output and are reported
as diagnostics; the command then exits with code 1.

Examples:
  automodel compile -s order.yaml Shop.Order 'Items.Sku = "X1"'
  automodel compile -s order.cue Shop.Order 'status in "Paid,Shipped"' --strategy lambda
  automodel compile -s order.yaml Shop.Order 'note like "ab"' --record history.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "quantifier strategy (implicit|lambda)")
	cmd.Flags().BoolVar(&opts.Parameters, "parameters", false, "emit @n placeholders instead of literals")
	cmd.Flags().StringVar(&opts.Record, "record", "", "append the result to this history database")

	return cmd
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// compilerOverrides turns command flags into compiler options.
func compilerOverrides(strategy string, parameters bool, cmd *cobra.Command) ([]compiler.Option, *CLIError) {
	var out []compiler.Option
	if strategy != "" {
		s, err := exprgen.StrategyByName(strategy)
		if err != nil {
			return nil, &CLIError{Code: ErrCodeConfig, Message: err.Error()}
		}
		out = append(out, compiler.WithStrategy(s))
	}
	if cmd.Flags().Changed("parameters") {
		out = append(out, compiler.WithParameters(parameters))
	}
	return out, nil
}

func runCompile(opts *CompileOptions, table, filter string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	overrides, cliErr := compilerOverrides(opts.Strategy, opts.Parameters, cmd)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	e, cliErr := loadEnv(opts.RootOptions, overrides...)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	if cliErr := e.checkTable(table); cliErr != nil {
		return fail(formatter, cliErr)
	}

	formatter.VerboseLog("Compiling %q against %s (%s)", filter, table, e.compiler.Strategy())

	res, err := e.compiler.Compile(table, filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	var recordID string
	if opts.Record != "" {
		rec, cliErr := record(cmd.Context(), opts.Record, res)
		if cliErr != nil {
			return fail(formatter, cliErr)
		}
		recordID = rec.ID
		formatter.VerboseLog("Recorded %s", rec.ID)
	}

	return outputResult(formatter, res, recordID)
}

// record appends res to the history database at path.
func record(ctx context.Context, path string, res *compiler.Result) (*history.Record, *CLIError) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := history.Open(path)
	if err != nil {
		return nil, &CLIError{Code: ErrCodeHistory, Message: err.Error()}
	}
	defer st.Close()

	rec, err := st.Append(ctx, history.NewEntry(res))
	if err != nil {
		return nil, &CLIError{Code: ErrCodeHistory, Message: err.Error()}
	}
	return rec, nil
}

func compileOutput(res *compiler.Result) (CompileOutput, error) {
	out := CompileOutput{
		Table:       res.Table,
		Strategy:    res.Strategy,
		Input:       res.Original,
		Text:        res.Text,
		Diagnostics: res.Diagnostics,
	}
	for _, v := range res.Params {
		lit, err := exprgen.FormatParam(v)
		if err != nil {
			return out, err
		}
		out.Params = append(out.Params, lit)
	}
	return out, nil
}

// outputResult writes a compile result. Clause diagnostics make the
// command exit with ExitFailure after the text has been written.
func outputResult(formatter *OutputFormatter, res *compiler.Result, recordID string) error {
	out, err := compileOutput(res)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: out, RecordID: recordID}
		if res.HasErrors() {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeDiagnostics,
				Message: fmt.Sprintf("%d clause(s) failed", len(res.Diagnostics)),
			}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintln(w, out.Text)
		for i, p := range out.Params {
			fmt.Fprintf(w, "  @%d = %s\n", i, p)
		}
		if res.HasErrors() {
			fmt.Fprintf(w, "\n✗ %d clause(s) failed\n", len(res.Diagnostics))
			for _, d := range res.Diagnostics {
				fmt.Fprintf(w, "  %s\n", d.Error())
			}
		}
		if recordID != "" {
			fmt.Fprintf(w, "Recorded %s\n", recordID)
		}
	}

	if res.HasErrors() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d clause(s) failed", len(res.Diagnostics)))
	}
	return nil
}
