package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intelliquiz/iqclient/internal/app"
)

func newServeCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local web gateway",
		RunE: s.run(func(cmd *cobra.Command, args []string, rt *app.Runtime) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Gateway listening on http://%s\n", rt.Config.Server.Address)
			return rt.Server().Start(cmd.Context())
		}),
	}
	cmd.Flags().String("address", "", "listen address (or IQ_SERVER_ADDRESS)")
	_ = s.v.BindPFlag("server.address", cmd.Flags().Lookup("address"))
	return cmd
}
