package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Repository is the default metadata store: one JSON record per image keyed
// by image_id in an embedded Badger database. Scan order is key order, which
// is what pagination tokens index into.
type Repository struct {
	db *badger.DB
}

// NewRepository builds a metadata repository over an open Badger database.
func NewRepository(db *badger.DB) *Repository {
	return &Repository{db: db}
}

// Put stores the metadata record under its image id.
func (r *Repository) Put(ctx context.Context, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		return txn.Set([]byte(meta.ImageID), data)
	})
}

// Get fetches the record for imageID, returning ErrNotFound when absent.
func (r *Repository) Get(ctx context.Context, imageID string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(imageID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Delete removes the record for imageID. Deleting an absent key is a no-op.
func (r *Repository) Delete(ctx context.Context, imageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(imageID))
	})
}

// Scan walks records in key order from the exclusive StartAfter position,
// keeping those that match the user/tag filters, until Limit matches are
// collected. HasMore is decided by looking ahead for one further match.
func (r *Repository) Scan(ctx context.Context, opts ScanOptions) (ScanPage, error) {
	if err := ctx.Err(); err != nil {
		return ScanPage{}, err
	}

	var page ScanPage
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		it.Rewind()
		if opts.StartAfter != "" {
			it.Seek([]byte(opts.StartAfter))
			if it.Valid() && string(it.Item().Key()) == opts.StartAfter {
				it.Next()
			}
		}

		for ; it.Valid(); it.Next() {
			var meta Metadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				return fmt.Errorf("unmarshal record %s: %w", it.Item().Key(), err)
			}

			if !matches(meta, opts) {
				continue
			}

			if opts.Limit > 0 && len(page.Items) >= opts.Limit {
				page.HasMore = true
				return nil
			}

			page.Items = append(page.Items, meta)
			page.LastKey = meta.ImageID
		}
		return nil
	})
	if err != nil {
		return ScanPage{}, err
	}
	return page, nil
}

// Ping verifies the database is usable, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(txn *badger.Txn) error { return nil })
}

func matches(meta Metadata, opts ScanOptions) bool {
	if opts.UserID != "" && meta.UserID != opts.UserID {
		return false
	}
	if opts.Tag != "" && !meta.HasTag(opts.Tag) {
		return false
	}
	return true
}
