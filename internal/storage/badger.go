package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/vishalvikash93/imagevault/internal/config"
)

// OpenBadger opens the embedded metadata database at the configured path.
// The caller owns the returned handle and must Close it on shutdown.
func OpenBadger(cfg config.MetadataConfig) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.BadgerPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database at %q: %w", cfg.BadgerPath, err)
	}
	return db, nil
}
