package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/vky3831/thryv/internal/models"
	"github.com/vky3831/thryv/internal/repository"
	"github.com/vky3831/thryv/internal/schedule"
	"github.com/vky3831/thryv/internal/storage"
	"github.com/vky3831/thryv/internal/storage/sqlite"
)

func openTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "thryv.db"), repository.Schema())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateProfile(t *testing.T, profiles *repository.Profiles, name, passkey string) *models.Profile {
	t.Helper()
	profile, err := profiles.Create(context.Background(), name, passkey, "")
	if err != nil {
		t.Fatalf("failed to create profile %q: %v", name, err)
	}
	return profile
}

func dailyItem(title string) repository.ItemParams {
	return repository.ItemParams{
		Title:    title,
		Schedule: schedule.Descriptor{Kind: schedule.Daily},
	}
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	profiles := repository.NewProfiles(store)

	t.Run("create seeds defaults", func(t *testing.T) {
		profile := mustCreateProfile(t, profiles, "  Asha  ", "")
		if profile.ID == "" {
			t.Fatal("expected generated profile ID")
		}
		if profile.Name != "Asha" {
			t.Errorf("expected trimmed name, got %q", profile.Name)
		}
		if len(profile.CustomTypes) == 0 || len(profile.CustomUnits) == 0 {
			t.Error("expected default measurement types and units")
		}
		if profile.PasskeyHash != "" {
			t.Error("expected empty passkey hash for open profile")
		}
	})

	t.Run("create rejects empty name", func(t *testing.T) {
		if _, err := profiles.Create(ctx, "   ", "", ""); !errors.Is(err, repository.ErrNameRequired) {
			t.Errorf("expected ErrNameRequired, got %v", err)
		}
	})

	t.Run("get absent profile", func(t *testing.T) {
		if _, err := profiles.Get(ctx, "no-such-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rename", func(t *testing.T) {
		profile := mustCreateProfile(t, profiles, "Before", "")
		renamed, err := profiles.Rename(ctx, profile.ID, "After")
		if err != nil {
			t.Fatalf("failed to rename: %v", err)
		}
		if renamed.Name != "After" {
			t.Errorf("expected renamed profile, got %q", renamed.Name)
		}
		got, err := profiles.Get(ctx, profile.ID)
		if err != nil {
			t.Fatalf("failed to reload profile: %v", err)
		}
		if got.Name != "After" {
			t.Errorf("rename not persisted, got %q", got.Name)
		}
	})

	t.Run("custom types and units ignore duplicates", func(t *testing.T) {
		profile := mustCreateProfile(t, profiles, "Custom", "")
		before := len(profile.CustomTypes)
		updated, err := profiles.AddCustomType(ctx, profile.ID, "Heart Rate")
		if err != nil {
			t.Fatalf("failed to add type: %v", err)
		}
		if len(updated.CustomTypes) != before+1 {
			t.Errorf("expected %d types, got %d", before+1, len(updated.CustomTypes))
		}
		again, err := profiles.AddCustomType(ctx, profile.ID, "Heart Rate")
		if err != nil {
			t.Fatalf("failed to re-add type: %v", err)
		}
		if len(again.CustomTypes) != before+1 {
			t.Errorf("duplicate type appended, got %d", len(again.CustomTypes))
		}
	})
}

func TestProfileVerify(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	profiles := repository.NewProfiles(store)

	locked := mustCreateProfile(t, profiles, "Locked", "hunter2")
	open := mustCreateProfile(t, profiles, "Open", "")

	t.Run("correct passkey", func(t *testing.T) {
		ok, err := profiles.Verify(ctx, locked.ID, "hunter2")
		if err != nil {
			t.Fatalf("failed to verify: %v", err)
		}
		if !ok {
			t.Error("expected correct passkey to verify")
		}
	})

	t.Run("wrong passkey", func(t *testing.T) {
		ok, err := profiles.Verify(ctx, locked.ID, "wrong")
		if err != nil {
			t.Fatalf("failed to verify: %v", err)
		}
		if ok {
			t.Error("expected wrong passkey to fail")
		}
	})

	t.Run("missing profile fails closed", func(t *testing.T) {
		ok, err := profiles.Verify(ctx, "no-such-id", "hunter2")
		if err != nil {
			t.Fatalf("expected no error for missing profile, got %v", err)
		}
		if ok {
			t.Error("expected missing profile to fail verification")
		}
	})

	t.Run("open profile rejects any passkey", func(t *testing.T) {
		ok, err := profiles.Verify(ctx, open.ID, "anything")
		if err != nil {
			t.Fatalf("failed to verify: %v", err)
		}
		if ok {
			t.Error("expected profile without passkey to reject verification")
		}
	})
}

func TestItems(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	profiles := repository.NewProfiles(store)
	items := repository.NewItems(store)
	profile := mustCreateProfile(t, profiles, "Asha", "")

	t.Run("create and list", func(t *testing.T) {
		created, err := items.Create(ctx, profile.ID, dailyItem("Vitamin D"))
		if err != nil {
			t.Fatalf("failed to create item: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected generated item ID")
		}
		listed, err := items.ListByProfile(ctx, profile.ID)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(listed) != 1 || listed[0].Title != "Vitamin D" {
			t.Errorf("unexpected listing: %+v", listed)
		}
	})

	t.Run("create rejects empty title", func(t *testing.T) {
		if _, err := items.Create(ctx, profile.ID, dailyItem("  ")); !errors.Is(err, repository.ErrTitleRequired) {
			t.Errorf("expected ErrTitleRequired, got %v", err)
		}
	})

	t.Run("create rejects invalid schedule", func(t *testing.T) {
		params := repository.ItemParams{
			Title:    "Broken",
			Schedule: schedule.Descriptor{Kind: schedule.Monthly, MonthDay: 0},
		}
		if _, err := items.Create(ctx, profile.ID, params); !errors.Is(err, schedule.ErrInvalidDescriptor) {
			t.Errorf("expected ErrInvalidDescriptor, got %v", err)
		}
	})

	t.Run("update missing item", func(t *testing.T) {
		if _, err := items.Update(ctx, "no-such-id", dailyItem("Ghost")); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update replaces fields", func(t *testing.T) {
		item, err := items.Create(ctx, profile.ID, dailyItem("Old title"))
		if err != nil {
			t.Fatalf("failed to create item: %v", err)
		}
		params := repository.ItemParams{
			Title:    "New title",
			Category: "health",
			Schedule: schedule.Descriptor{Kind: schedule.Weekly, Weekdays: []time.Weekday{time.Monday}},
		}
		updated, err := items.Update(ctx, item.ID, params)
		if err != nil {
			t.Fatalf("failed to update item: %v", err)
		}
		if updated.Title != "New title" || updated.Schedule.Kind != schedule.Weekly {
			t.Errorf("unexpected update result: %+v", updated)
		}
		if updated.ProfileID != profile.ID {
			t.Errorf("update changed owner: %q", updated.ProfileID)
		}
	})
}

func TestDueQueries(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	profiles := repository.NewProfiles(store)
	items := repository.NewItems(store)
	profile := mustCreateProfile(t, profiles, "Asha", "")

	if _, err := items.Create(ctx, profile.ID, dailyItem("Every day")); err != nil {
		t.Fatalf("failed to create daily item: %v", err)
	}
	monthly := repository.ItemParams{
		Title:    "Rent",
		Schedule: schedule.Descriptor{Kind: schedule.Monthly, MonthDay: 28},
	}
	if _, err := items.Create(ctx, profile.ID, monthly); err != nil {
		t.Fatalf("failed to create monthly item: %v", err)
	}

	t.Run("due on day", func(t *testing.T) {
		due, err := items.DueOn(ctx, profile.ID, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("failed to query due items: %v", err)
		}
		if len(due) != 1 || due[0].Title != "Every day" {
			t.Errorf("expected only the daily item on the 14th, got %+v", due)
		}
		due, err = items.DueOn(ctx, profile.ID, time.Date(2026, time.March, 28, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("failed to query due items: %v", err)
		}
		if len(due) != 2 {
			t.Errorf("expected both items on the 28th, got %+v", due)
		}
	})

	t.Run("due in month", func(t *testing.T) {
		due, err := items.DueInMonth(ctx, profile.ID, time.March, 2026)
		if err != nil {
			t.Fatalf("failed to query due items: %v", err)
		}
		if len(due) != 2 {
			t.Errorf("expected both items due in March, got %+v", due)
		}
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	profiles := repository.NewProfiles(store)
	items := repository.NewItems(store)
	history := repository.NewHistory(store)
	profile := mustCreateProfile(t, profiles, "Asha", "")
	item, err := items.Create(ctx, profile.ID, dailyItem("Vitamin D"))
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	t.Run("append and list newest first", func(t *testing.T) {
		older := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)
		newer := time.Date(2026, time.August, 2, 9, 0, 0, 0, time.UTC)
		if _, err := history.Append(ctx, profile.ID, item.ID, item.Title, "first", older); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		if _, err := history.Append(ctx, profile.ID, item.ID, item.Title, "second", newer); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		entries, err := history.ListByProfile(ctx, profile.ID)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Note != "second" || entries[1].Note != "first" {
			t.Errorf("expected newest first, got %q then %q", entries[0].Note, entries[1].Note)
		}
		if entries[0].ItemTitle != "Vitamin D" {
			t.Errorf("expected denormalized title, got %q", entries[0].ItemTitle)
		}
	})

	t.Run("append with zero time uses now", func(t *testing.T) {
		entry, err := history.Append(ctx, profile.ID, item.ID, item.Title, "", time.Time{})
		if err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		if time.Since(entry.Timestamp) > time.Minute {
			t.Errorf("expected a recent timestamp, got %v", entry.Timestamp)
		}
		if err := history.Delete(ctx, entry.ID); err != nil {
			t.Fatalf("failed to delete entry: %v", err)
		}
	})

	t.Run("done today toggles with delete", func(t *testing.T) {
		now := time.Now()
		entry, err := history.Append(ctx, profile.ID, item.ID, item.Title, "", now)
		if err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		done, err := history.WasDoneToday(ctx, item.ID, now)
		if err != nil {
			t.Fatalf("failed to check today: %v", err)
		}
		if !done {
			t.Error("expected item done today after append")
		}
		if err := history.Delete(ctx, entry.ID); err != nil {
			t.Fatalf("failed to delete entry: %v", err)
		}
		done, err = history.WasDoneToday(ctx, item.ID, now)
		if err != nil {
			t.Fatalf("failed to re-check today: %v", err)
		}
		// Earlier subtests only append on fixed past dates, so today is clear.
		if done {
			t.Error("expected item not done today after delete")
		}
	})

	t.Run("done in month", func(t *testing.T) {
		done, err := history.WasDoneInMonth(ctx, item.ID, time.August, 2026)
		if err != nil {
			t.Fatalf("failed to check month: %v", err)
		}
		if !done {
			t.Error("expected August 2026 done")
		}
		done, err = history.WasDoneInMonth(ctx, item.ID, time.July, 2026)
		if err != nil {
			t.Fatalf("failed to check month: %v", err)
		}
		if done {
			t.Error("expected July 2026 not done")
		}
	})
}

func TestCascadeDeletes(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	profiles := repository.NewProfiles(store)
	items := repository.NewItems(store)
	history := repository.NewHistory(store)

	profile := mustCreateProfile(t, profiles, "Asha", "")
	other := mustCreateProfile(t, profiles, "Ravi", "")

	itemA, err := items.Create(ctx, profile.ID, dailyItem("A"))
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	itemB, err := items.Create(ctx, profile.ID, dailyItem("B"))
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	otherItem, err := items.Create(ctx, other.ID, dailyItem("Other"))
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	at := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)
	for _, it := range []*models.Item{itemA, itemB, otherItem} {
		if _, err := history.Append(ctx, it.ProfileID, it.ID, it.Title, "", at); err != nil {
			t.Fatalf("failed to append history: %v", err)
		}
	}

	t.Run("item delete removes only its history", func(t *testing.T) {
		if err := items.Delete(ctx, itemA.ID); err != nil {
			t.Fatalf("failed to delete item: %v", err)
		}
		entries, err := history.ListByProfile(ctx, profile.ID)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 1 || entries[0].ItemID != itemB.ID {
			t.Errorf("expected only item B history to remain, got %+v", entries)
		}
	})

	t.Run("profile delete removes items and history", func(t *testing.T) {
		if err := profiles.Delete(ctx, profile.ID); err != nil {
			t.Fatalf("failed to delete profile: %v", err)
		}
		if _, err := profiles.Get(ctx, profile.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected profile gone, got %v", err)
		}
		remaining, err := items.ListByProfile(ctx, profile.ID)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("expected no orphaned items, got %+v", remaining)
		}
		entries, err := history.ListByProfile(ctx, profile.ID)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no orphaned history, got %+v", entries)
		}
	})

	t.Run("other profile untouched", func(t *testing.T) {
		remaining, err := items.ListByProfile(ctx, other.ID)
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(remaining) != 1 || remaining[0].ID != otherItem.ID {
			t.Errorf("expected other profile's item intact, got %+v", remaining)
		}
		entries, err := history.ListByProfile(ctx, other.ID)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected other profile's history intact, got %+v", entries)
		}
	})
}

func TestMeta(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	meta := repository.NewMeta(store)

	t.Run("absent key", func(t *testing.T) {
		_, ok, err := meta.Get(ctx, models.MetaCurrentProfile)
		if err != nil {
			t.Fatalf("failed to read meta: %v", err)
		}
		if ok {
			t.Error("expected absent key")
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := meta.Set(ctx, models.MetaTheme, "dark"); err != nil {
			t.Fatalf("failed to set meta: %v", err)
		}
		value, ok, err := meta.Get(ctx, models.MetaTheme)
		if err != nil {
			t.Fatalf("failed to read meta: %v", err)
		}
		if !ok || value != "dark" {
			t.Errorf("expected dark theme, got %q (present=%v)", value, ok)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := meta.Set(ctx, models.MetaTheme, "light"); err != nil {
			t.Fatalf("failed to overwrite meta: %v", err)
		}
		value, _, err := meta.Get(ctx, models.MetaTheme)
		if err != nil {
			t.Fatalf("failed to read meta: %v", err)
		}
		if value != "light" {
			t.Errorf("expected overwritten value, got %q", value)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := meta.Delete(ctx, models.MetaTheme); err != nil {
			t.Fatalf("failed to delete meta: %v", err)
		}
		_, ok, err := meta.Get(ctx, models.MetaTheme)
		if err != nil {
			t.Fatalf("failed to read meta: %v", err)
		}
		if ok {
			t.Error("expected key gone after delete")
		}
		if err := meta.Delete(ctx, models.MetaTheme); err != nil {
			t.Errorf("expected deleting absent key to be a no-op, got %v", err)
		}
	})
}
