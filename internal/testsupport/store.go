package testsupport

import (
	"testing"

	"quadvoice/internal/config"
	"quadvoice/internal/logging"
	"quadvoice/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s := store.Open(cfg, logging.NewNop())
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
