package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/herocheck/internal/mode"
	"github.com/roach88/herocheck/internal/store"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Print bool
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the hero tables in the configured database",
		Long: `Create WORKING_CLASS_HEROES, VOUCHERS and FILE in the configured
database if they do not exist. Against a simulated database this does
nothing.

Examples:
  herocheck schema --db-driver sqlite3 --db-path ./heroes.db
  herocheck schema --print --db-driver mysql`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Print, "print", false, "print the DDL for the configured driver instead of applying it")

	return cmd
}

func runSchema(opts *SchemaOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Print {
		st, err := store.Open(opts.Config.DB.Driver, opts.Config.DB.DSN(), store.Options{})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		if f.JSON() {
			return f.Success(map[string]string{"driver": st.Driver(), "schema": st.Schema()})
		}
		fmt.Fprint(f.Writer, st.Schema())
		return nil
	}

	// Falling back would report success for tables that were never made.
	dbOpts := *opts.RootOptions
	dbOpts.Config.UseMockAPI = true
	dbOpts.Config.AllowDBFallback = false

	b, err := openBackends(&dbOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up database", err)
	}
	defer b.Close()

	db := b.db(&dbOpts)
	if err := db.SetupSchema(cmd.Context()); err != nil {
		_ = f.Error(ErrCodeBackend, err.Error(), nil)
		return WrapExitError(ExitCommandError, "schema setup failed", err)
	}

	message := "schema applied"
	if db.Mode() == mode.Simulated {
		message = "schema skipped (simulated database)"
	}
	if f.JSON() {
		return f.Success(map[string]string{"mode": db.Mode().String(), "message": message})
	}
	fmt.Fprintf(f.Writer, "%s %s\n", Mark(true), message)
	return nil
}
