package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackstate/internal/sqlite"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize trackstate storage",
		Long:  "Create the configuration and data directories, write a default config.yaml,\nand create the capture database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	st, err := loadSettings(flags)
	if err != nil {
		return sysError("%s", err)
	}

	if err := os.MkdirAll(st.configDir, 0o755); err != nil {
		return sysError("create config directory: %s", err)
	}
	if _, err := writeConfigIfMissing(st.configDir, st.config.DataDir); err != nil {
		return sysError("write config: %s", err)
	}

	store := sqlite.NewStore()
	if err := store.Attach(st.config); err != nil {
		return sysError("initialize storage: %s", err)
	}
	if err := store.Detach(); err != nil {
		return sysError("finalize storage: %s", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "trackstate initialized\nconfig: %s\ndata:   %s\n", st.configDir, st.config.DataDir)
	return nil
}
