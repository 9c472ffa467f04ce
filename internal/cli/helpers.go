package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackstate/internal/sqlite"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// attachStore loads settings and attaches a capture store to the resolved
// data directory. The caller must Detach the returned store.
func attachStore(cmd *cobra.Command, flags *rootFlags) (*sqlite.Store, settings, error) {
	st, err := loadSettings(flags)
	if err != nil {
		return nil, settings{}, sysError("%s", err)
	}
	store := sqlite.NewStore()
	store.SetLogger(newLogger(cmd.ErrOrStderr(), st.config.LogLevel))
	if err := store.Attach(st.config); err != nil {
		return nil, settings{}, sysError("attach store: %s", err)
	}
	return store, st, nil
}

// storeError classifies a store error as a user error (bad id, unknown
// capture) or a system error.
func storeError(op string, err error) error {
	switch {
	case isUserStoreError(err):
		return userError("%s: %s", op, err)
	default:
		return sysError("%s: %s", op, err)
	}
}

func isUserStoreError(err error) bool {
	for _, target := range []error{types.ErrCaptureNotFound, types.ErrInvalidID} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal output: %s", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
