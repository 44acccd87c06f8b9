package repository

import (
	"context"
	"fmt"

	"github.com/vky3831/thryv/internal/models"
	"github.com/vky3831/thryv/internal/storage"
)

// Meta is the repository for small app-level key/value settings such as the
// current profile and the session token.
type Meta struct {
	store storage.Store
}

// NewMeta creates a meta repository on the given store.
func NewMeta(store storage.Store) *Meta {
	return &Meta{store: store}
}

// Get returns the value for key and whether it was present.
func (r *Meta) Get(ctx context.Context, key string) (string, bool, error) {
	rec, err := r.store.Get(ctx, CollectionMeta, key)
	if err != nil {
		return "", false, fmt.Errorf("reading meta %q: %w", key, err)
	}
	if rec == nil {
		return "", false, nil
	}
	var entry models.MetaEntry
	if err := storage.DecodeRecord(rec, &entry); err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set writes key to value, overwriting any previous value.
func (r *Meta) Set(ctx context.Context, key, value string) error {
	rec, err := storage.EncodeRecord(&models.MetaEntry{Key: key, Value: value})
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, CollectionMeta, rec); err != nil {
		return fmt.Errorf("writing meta %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (r *Meta) Delete(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, CollectionMeta, key); err != nil {
		return fmt.Errorf("deleting meta %q: %w", key, err)
	}
	return nil
}
