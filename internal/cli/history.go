package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/automodel/internal/history"
)

// HistoryOptions holds flags for the history commands.
type HistoryOptions struct {
	*RootOptions
	DB         string
	Table      string
	Limit      int
	ErrorsOnly bool
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded compile calls",
		Long: `Inspect the compile history written by "compile --record" and
"fuzzy --record".

Examples:
  automodel history list --db history.db --table Shop.Order
  automodel history show --db history.db 0190f3a2-...
  automodel history same --db history.db 0190f3a2-...`,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "history database path (required)")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List records, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(opts, cmd)
		},
	}
	list.Flags().StringVar(&opts.Table, "table", "", "only records of this table")
	list.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of records")
	list.Flags().BoolVar(&opts.ErrorsOnly, "errors", false, "only records with diagnostics")

	show := &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(opts, args[0], cmd)
		},
	}

	same := &cobra.Command{
		Use:           "same <id>",
		Short:         "List records that compiled to the same predicate",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistorySame(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(list, show, same)
	return cmd
}

// openHistory opens the database named by --db. A missing file is an
// error here: only compile and fuzzy create databases.
func openHistory(opts *HistoryOptions) (*history.Store, *CLIError) {
	if opts.DB == "" {
		return nil, &CLIError{Code: ErrCodeNotFound, Message: "no history database given (use --db)"}
	}
	if _, err := os.Stat(opts.DB); err != nil {
		return nil, &CLIError{Code: ErrCodeNotFound, Message: fmt.Sprintf("history database not found: %s", opts.DB)}
	}
	st, err := history.Open(opts.DB)
	if err != nil {
		return nil, &CLIError{Code: ErrCodeHistory, Message: err.Error()}
	}
	return st, nil
}

func runHistoryList(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, cliErr := openHistory(opts)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	defer st.Close()

	records, err := st.List(cmd.Context(), history.ListOptions{
		Table:      opts.Table,
		Limit:      opts.Limit,
		ErrorsOnly: opts.ErrorsOnly,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(records)
	}
	return printRecords(formatter.Writer, records)
}

func runHistoryShow(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, cliErr := openHistory(opts)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeRecordNotFound, fmt.Sprintf("no record %s", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(rec)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "id:         %s\n", rec.ID)
	fmt.Fprintf(w, "table:      %s\n", rec.Table)
	fmt.Fprintf(w, "strategy:   %s\n", rec.Strategy)
	fmt.Fprintf(w, "created:    %s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "hash:       %s\n", rec.Hash)
	fmt.Fprintf(w, "filter:     %s\n", rec.Filter)
	fmt.Fprintf(w, "expression: %s\n", rec.Expression)
	if string(rec.Params) != "[]" {
		fmt.Fprintf(w, "params:     %s\n", rec.Params)
	}
	for _, d := range rec.Diagnostics {
		fmt.Fprintf(w, "  %s: %s (at %d..%d)\n", d.Code, d.Message, d.Start, d.End)
	}
	return nil
}

func runHistorySame(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, cliErr := openHistory(opts)
	if cliErr != nil {
		return fail(formatter, cliErr)
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeRecordNotFound, fmt.Sprintf("no record %s", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	records, err := st.FindByHash(cmd.Context(), rec.Hash)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(records)
	}
	return printRecords(formatter.Writer, records)
}

func printRecords(w io.Writer, records []history.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTABLE\tSTRATEGY\tERRORS\tFILTER")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Table, r.Strategy, len(r.Diagnostics), r.Filter)
	}
	return tw.Flush()
}
