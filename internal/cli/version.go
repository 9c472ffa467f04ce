package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackstate/pkg/trackstate"
)

const modulePath = "github.com/mesh-intelligence/trackstate"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the trackstate version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "trackstate v%s\nmodule: %s\n", trackstate.Version, modulePath)
			return nil
		},
	}
}
