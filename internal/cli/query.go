package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/herocheck/internal/mode"
	"github.com/roach88/herocheck/internal/simdb"
)

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Mode string     `json:"mode"`
	Rows simdb.Rows `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql> [params...]",
		Short: "Run one SQL statement through the database facade",
		Long: `Run a SQL statement with positional parameters and print the rows.

The statement goes through the same routing as scenario calls: against a
simulated database only the recognized query shapes return rows.

Examples:
  herocheck query "SELECT * FROM WORKING_CLASS_HEROES WHERE natid = ?" natid-12
  herocheck query --mock-db "SELECT COUNT(*) as count FROM WORKING_CLASS_HEROES WHERE natid = ?" natid-5`,
		Args: minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runQuery(opts *RootOptions, sql string, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// The API surface is never needed here.
	dbOpts := *opts
	dbOpts.Config.UseMockAPI = true

	b, err := openBackends(&dbOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up database", err)
	}
	defer b.Close()

	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a
	}

	db := b.db(&dbOpts)
	rows, err := db.Query(cmd.Context(), sql, params)
	if err != nil {
		code := ExitFailure
		if mode.IsConnectionError(err) {
			code = ExitCommandError
		}
		_ = f.Error(ErrCodeBackend, err.Error(), nil)
		return WrapExitError(code, "query failed", err)
	}

	if f.JSON() {
		if rows == nil {
			rows = simdb.Rows{}
		}
		return f.Success(QueryResult{Mode: db.Mode().String(), Rows: rows})
	}
	outputRowsText(f.Writer, rows)
	return nil
}

// outputRowsText prints one line per row as column=value pairs in column
// order.
func outputRowsText(w io.Writer, rows simdb.Rows) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	for _, row := range rows {
		cols := make([]string, 0, len(row))
		for c := range row {
			cols = append(cols, c)
		}
		sort.Strings(cols)

		pairs := make([]string, len(cols))
		for i, c := range cols {
			pairs[i] = fmt.Sprintf("%s=%v", c, row[c])
		}
		fmt.Fprintln(w, strings.Join(pairs, " "))
	}
	fmt.Fprintf(w, "(%d row(s))\n", len(rows))
}
