package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vky3831/thryv/internal/models"
	"github.com/vky3831/thryv/internal/schedule"
	"github.com/vky3831/thryv/internal/storage"
)

// ErrTitleRequired is returned when an item is saved with an empty title.
var ErrTitleRequired = errors.New("item title required")

// ItemParams are the caller-supplied fields of an item. The schedule
// descriptor arrives already parsed and validated.
type ItemParams struct {
	Title    string
	Category string
	Schedule schedule.Descriptor
	Notes    string
}

// Items is the repository for Item entities.
type Items struct {
	store storage.Store
}

// NewItems creates an item repository on the given store.
func NewItems(store storage.Store) *Items {
	return &Items{store: store}
}

// Create adds a new item for the given profile.
func (r *Items) Create(ctx context.Context, profileID string, params ItemParams) (*models.Item, error) {
	item := &models.Item{
		ProfileID: profileID,
		CreatedAt: time.Now().UTC(),
	}
	if err := applyParams(item, params); err != nil {
		return nil, err
	}

	rec, err := storage.EncodeRecord(item)
	if err != nil {
		return nil, err
	}
	key, err := r.store.Add(ctx, CollectionItems, rec)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	item.ID = key.(string)
	return item, nil
}

// Get retrieves an item by ID. Returns storage.ErrNotFound if absent.
func (r *Items) Get(ctx context.Context, id string) (*models.Item, error) {
	rec, err := r.store.Get(ctx, CollectionItems, id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("item %s: %w", id, storage.ErrNotFound)
	}
	var item models.Item
	if err := storage.DecodeRecord(rec, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update replaces an existing item's fields. Fails with storage.ErrNotFound
// when the item does not exist.
func (r *Items) Update(ctx context.Context, id string, params ItemParams) (*models.Item, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyParams(item, params); err != nil {
		return nil, err
	}

	rec, err := storage.EncodeRecord(item)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.Put(ctx, CollectionItems, rec); err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	return item, nil
}

// Delete removes an item and its own history entries in one transaction.
// Deleting an absent item is a no-op.
func (r *Items) Delete(ctx context.Context, id string) error {
	return r.store.Update(ctx, func(tx storage.Tx) error {
		entries, err := tx.GetAllByIndex(ctx, CollectionHistory, IndexItemID, id)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := tx.Delete(ctx, CollectionHistory, entry["id"]); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, CollectionItems, id)
	})
}

// ListByProfile retrieves every item owned by the given profile.
func (r *Items) ListByProfile(ctx context.Context, profileID string) ([]models.Item, error) {
	recs, err := r.store.GetAllByIndex(ctx, CollectionItems, IndexProfileID, profileID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	items := make([]models.Item, 0, len(recs))
	for _, rec := range recs {
		var item models.Item
		if err := storage.DecodeRecord(rec, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// DueOn returns the profile's items that occur on the given date.
func (r *Items) DueOn(ctx context.Context, profileID string, date time.Time) ([]models.Item, error) {
	items, err := r.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	due := items[:0:0]
	for _, item := range items {
		if item.Schedule.OccursOn(date) {
			due = append(due, item)
		}
	}
	return due, nil
}

// DueInMonth returns the profile's items due in the given month of the
// given year, at month-level granularity (see schedule.OccursInMonth).
func (r *Items) DueInMonth(ctx context.Context, profileID string, month time.Month, year int) ([]models.Item, error) {
	items, err := r.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	due := items[:0:0]
	for _, item := range items {
		if item.Schedule.OccursInMonth(month, year) {
			due = append(due, item)
		}
	}
	return due, nil
}

func applyParams(item *models.Item, params ItemParams) error {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if err := params.Schedule.Validate(); err != nil {
		return err
	}
	item.Title = title
	item.Category = params.Category
	item.Schedule = params.Schedule
	item.Notes = params.Notes
	return nil
}
