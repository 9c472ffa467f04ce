// Package sqlite exposes the capture store factory while keeping the
// implementation internal.
package sqlite

import "github.com/mesh-intelligence/trackstate/internal/sqlite"

// NewStore creates a capture store. The store is not attached; call Attach
// with a Config to open the database.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendReplay,
//	    DataDir: ".trackstate-db",
//	})
//	defer store.Detach()
func NewStore() *sqlite.Store {
	return sqlite.NewStore()
}
