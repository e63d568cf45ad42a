package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/herocheck/internal/envelope"
	"github.com/roach88/herocheck/internal/simserver"
)

// DefaultServeAddr matches the default base URL, so a plain "herocheck
// serve" answers a plain "herocheck test".
const DefaultServeAddr = "localhost:9997"

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulated hero API over HTTP",
		Long: `Serve the simulated hero API at the real API paths until interrupted.

Pointing the live client at this server exercises the live path end to
end without the real service.

Example:
  herocheck serve --addr localhost:9997`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := simserver.New(envelope.Builder{}, opts.Logger)
			if err := srv.ListenAndServe(cmd.Context(), opts.Addr); err != nil {
				return WrapExitError(ExitCommandError, "simulated API server failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", DefaultServeAddr, "address to listen on")

	return cmd
}
