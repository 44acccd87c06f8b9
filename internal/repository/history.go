package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vky3831/thryv/internal/models"
	"github.com/vky3831/thryv/internal/storage"
)

// History is the repository for HistoryEntry entities. Entries are
// append-only: there is no update operation.
type History struct {
	store storage.Store
}

// NewHistory creates a history repository on the given store.
func NewHistory(store storage.Store) *History {
	return &History{store: store}
}

// Append records that an item's obligation was fulfilled. itemTitle is
// denormalized from the item at call time; a zero at means now.
func (r *History) Append(ctx context.Context, profileID, itemID, itemTitle, note string, at time.Time) (*models.HistoryEntry, error) {
	if at.IsZero() {
		at = time.Now()
	}
	entry := &models.HistoryEntry{
		ProfileID: profileID,
		ItemID:    itemID,
		ItemTitle: itemTitle,
		Note:      note,
		Timestamp: at.UTC(),
	}

	rec, err := storage.EncodeRecord(entry)
	if err != nil {
		return nil, err
	}
	key, err := r.store.Add(ctx, CollectionHistory, rec)
	if err != nil {
		return nil, fmt.Errorf("appending history: %w", err)
	}
	entry.ID = key.(string)
	return entry, nil
}

// ListByProfile retrieves the profile's history, most recent first.
func (r *History) ListByProfile(ctx context.Context, profileID string) ([]models.HistoryEntry, error) {
	recs, err := r.store.GetAllByIndex(ctx, CollectionHistory, IndexProfileID, profileID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	entries := make([]models.HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		var entry models.HistoryEntry
		if err := storage.DecodeRecord(rec, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

// Delete removes a single history entry. Deleting an absent entry is a
// no-op.
func (r *History) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionHistory, id); err != nil {
		return fmt.Errorf("deleting history entry: %w", err)
	}
	return nil
}

// HasEntryInPeriod reports whether the item has at least one history entry
// with start <= timestamp < end.
func (r *History) HasEntryInPeriod(ctx context.Context, itemID string, start, end time.Time) (bool, error) {
	recs, err := r.store.GetAllByIndex(ctx, CollectionHistory, IndexItemID, itemID)
	if err != nil {
		return false, fmt.Errorf("checking history period: %w", err)
	}
	for _, rec := range recs {
		var entry models.HistoryEntry
		if err := storage.DecodeRecord(rec, &entry); err != nil {
			return false, err
		}
		if !entry.Timestamp.Before(start) && entry.Timestamp.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

// WasDoneToday reports whether the item was fulfilled on the calendar day
// containing now, in now's location.
func (r *History) WasDoneToday(ctx context.Context, itemID string, now time.Time) (bool, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.HasEntryInPeriod(ctx, itemID, start, start.AddDate(0, 0, 1))
}

// WasDoneInMonth reports whether the item was fulfilled at any point in the
// given month of the given year (UTC month boundaries).
func (r *History) WasDoneInMonth(ctx context.Context, itemID string, month time.Month, year int) (bool, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return r.HasEntryInPeriod(ctx, itemID, start, start.AddDate(0, 1, 0))
}
