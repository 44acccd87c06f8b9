package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vky3831/thryv/internal/models"
	"github.com/vky3831/thryv/internal/repository"
	"github.com/vky3831/thryv/internal/storage"
)

// Serializer exports and imports snapshots against a store.
type Serializer struct {
	store storage.Store
	log   *slog.Logger
}

// NewSerializer creates a serializer on the given store.
func NewSerializer(store storage.Store) *Serializer {
	return &Serializer{
		store: store,
		log:   slog.Default().With("component", "snapshot"),
	}
}

// Export captures the whole database, meta included.
func (s *Serializer) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{ExportedAt: time.Now().UTC(), Meta: map[string]string{}}

	var err error
	if snap.Profiles, err = s.store.GetAll(ctx, repository.CollectionProfiles); err != nil {
		return nil, fmt.Errorf("exporting profiles: %w", err)
	}
	if snap.Items, err = s.store.GetAll(ctx, repository.CollectionItems); err != nil {
		return nil, fmt.Errorf("exporting items: %w", err)
	}
	if snap.History, err = s.store.GetAll(ctx, repository.CollectionHistory); err != nil {
		return nil, fmt.Errorf("exporting history: %w", err)
	}

	rows, err := s.store.GetAll(ctx, repository.CollectionMeta)
	if err != nil {
		return nil, fmt.Errorf("exporting meta: %w", err)
	}
	for _, row := range rows {
		var entry models.MetaEntry
		if err := storage.DecodeRecord(row, &entry); err != nil {
			return nil, err
		}
		snap.Meta[entry.Key] = entry.Value
	}

	s.log.Info("exported snapshot",
		"profiles", len(snap.Profiles),
		"items", len(snap.Items),
		"history", len(snap.History))
	return snap, nil
}

// ExportProfile captures a single profile with its items and history. Meta
// is device-level and stays behind.
func (s *Serializer) ExportProfile(ctx context.Context, profileID string) (*Snapshot, error) {
	profile, err := s.store.Get(ctx, repository.CollectionProfiles, profileID)
	if err != nil {
		return nil, fmt.Errorf("exporting profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s: %w", profileID, storage.ErrNotFound)
	}

	snap := &Snapshot{
		ExportedAt: time.Now().UTC(),
		Profiles:   []storage.Record{profile},
	}
	if snap.Items, err = s.store.GetAllByIndex(ctx, repository.CollectionItems, repository.IndexProfileID, profileID); err != nil {
		return nil, fmt.Errorf("exporting items: %w", err)
	}
	if snap.History, err = s.store.GetAllByIndex(ctx, repository.CollectionHistory, repository.IndexProfileID, profileID); err != nil {
		return nil, fmt.Errorf("exporting history: %w", err)
	}

	s.log.Info("exported profile snapshot",
		"profile", profileID,
		"items", len(snap.Items),
		"history", len(snap.History))
	return snap, nil
}

// Import loads a snapshot in one transaction. Profiles go in first, then
// items, then history, with a fresh ID assigned to each entity and every
// reference rewritten to follow it. A reference whose target is not part of
// the snapshot is kept as is rather than dropped, so a partial snapshot can
// still round-trip. Replace mode clears every collection first; the
// snapshot itself is never mutated.
func (s *Serializer) Import(ctx context.Context, snap *Snapshot, mode Mode) error {
	if mode != Merge && mode != Replace {
		return fmt.Errorf("unknown import mode %q", mode)
	}

	err := s.store.Update(ctx, func(tx storage.Tx) error {
		if mode == Replace {
			for _, collection := range []string{
				repository.CollectionProfiles,
				repository.CollectionItems,
				repository.CollectionHistory,
				repository.CollectionMeta,
			} {
				if err := tx.Clear(ctx, collection); err != nil {
					return err
				}
			}
		}

		profileIDs := make(map[string]any, len(snap.Profiles))
		for _, rec := range snap.Profiles {
			oldID := rec["id"]
			newID, err := addWithoutKey(ctx, tx, repository.CollectionProfiles, rec)
			if err != nil {
				return err
			}
			if oldID != nil {
				profileIDs[storage.KeyString(oldID)] = newID
			}
		}

		itemIDs := make(map[string]any, len(snap.Items))
		for _, rec := range snap.Items {
			oldID := rec["id"]
			rec = remapped(rec, "profileId", profileIDs)
			newID, err := addWithoutKey(ctx, tx, repository.CollectionItems, rec)
			if err != nil {
				return err
			}
			if oldID != nil {
				itemIDs[storage.KeyString(oldID)] = newID
			}
		}

		for _, rec := range snap.History {
			rec = remapped(rec, "profileId", profileIDs)
			rec = remapped(rec, "itemId", itemIDs)
			if _, err := addWithoutKey(ctx, tx, repository.CollectionHistory, rec); err != nil {
				return err
			}
		}

		for key, value := range snap.Meta {
			rec, err := storage.EncodeRecord(&models.MetaEntry{Key: key, Value: value})
			if err != nil {
				return err
			}
			if key == models.MetaCurrentProfile {
				if newID, ok := profileIDs[value]; ok {
					rec["value"] = newID
				}
			}
			if _, err := tx.Put(ctx, repository.CollectionMeta, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}

	s.log.Info("imported snapshot",
		"mode", string(mode),
		"profiles", len(snap.Profiles),
		"items", len(snap.Items),
		"history", len(snap.History))
	return nil
}

// Reset clears the whole database.
func (s *Serializer) Reset(ctx context.Context) error {
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		for _, collection := range []string{
			repository.CollectionProfiles,
			repository.CollectionItems,
			repository.CollectionHistory,
			repository.CollectionMeta,
		} {
			if err := tx.Clear(ctx, collection); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("resetting database: %w", err)
	}
	s.log.Warn("database reset")
	return nil
}

// addWithoutKey inserts a copy of rec without its old key so the store
// assigns a fresh one.
func addWithoutKey(ctx context.Context, tx storage.Tx, collection string, rec storage.Record) (any, error) {
	stripped := make(storage.Record, len(rec))
	for field, value := range rec {
		if field == "id" {
			continue
		}
		stripped[field] = value
	}
	return tx.Add(ctx, collection, stripped)
}

// remapped returns a copy of rec with the given reference field rewritten
// through ids, when the old value is known there.
func remapped(rec storage.Record, field string, ids map[string]any) storage.Record {
	old, ok := rec[field]
	if !ok {
		return rec
	}
	newID, ok := ids[storage.KeyString(old)]
	if !ok {
		return rec
	}
	out := make(storage.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	out[field] = newID
	return out
}
