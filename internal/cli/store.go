package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/multiverse/internal/store"
)

// openStore opens the database named by flag, falling back to the
// configured path. Read-only commands pass mustExist so that a typo in the
// path is reported instead of silently creating an empty database.
func openStore(flag, configured string, mustExist bool) (*store.Store, error) {
	path := flag
	if path == "" {
		path = configured
	}
	if mustExist {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found: %s", path)
		}
	}
	return store.Open(path)
}

// storeErrorCode maps snapshot lookup failures to CLI error codes.
func storeErrorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, store.ErrAmbiguous):
		return ErrCodeAmbiguousRef
	default:
		return ErrCodeStore
	}
}
