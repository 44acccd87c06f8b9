package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/vky3831/thryv/internal/storage"
)

func testSchema() storage.Schema {
	return storage.Schema{
		Version: 1,
		Collections: []storage.Collection{
			{Name: "profiles", KeyPath: "id", Keys: storage.KeyUUID, Indexes: []string{"name"}},
			{Name: "payments", KeyPath: "id", Keys: storage.KeySequence, Indexes: []string{"profileId"}},
			{Name: "meta", KeyPath: "key", Keys: storage.KeyNatural},
		},
	}
}

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	engine, err := Open(dbPath, testSchema())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestEngineCRUD(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()

	t.Run("Put assigns UUID key when absent", func(t *testing.T) {
		key, err := engine.Put(ctx, "profiles", storage.Record{"name": "Alice"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		id, ok := key.(string)
		if !ok || id == "" {
			t.Fatalf("expected generated string key, got %#v", key)
		}

		rec, err := engine.Get(ctx, "profiles", id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec == nil {
			t.Fatal("expected record, got nil")
		}
		if rec["id"] != id {
			t.Errorf("key not injected into record: got %v, want %v", rec["id"], id)
		}
		if rec["name"] != "Alice" {
			t.Errorf("name = %v, want Alice", rec["name"])
		}
	})

	t.Run("Put assigns sequence keys in order", func(t *testing.T) {
		first, err := engine.Put(ctx, "payments", storage.Record{"title": "Rent"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		second, err := engine.Put(ctx, "payments", storage.Record{"title": "Power"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if first.(int64) >= second.(int64) {
			t.Errorf("sequence keys not increasing: %v then %v", first, second)
		}
	})

	t.Run("Put replaces existing record", func(t *testing.T) {
		key, err := engine.Put(ctx, "profiles", storage.Record{"name": "Bob"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if _, err := engine.Put(ctx, "profiles", storage.Record{"id": key, "name": "Bobby"}); err != nil {
			t.Fatalf("replacing Put failed: %v", err)
		}
		rec, err := engine.Get(ctx, "profiles", key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec["name"] != "Bobby" {
			t.Errorf("name = %v, want Bobby", rec["name"])
		}
	})

	t.Run("Get of absent key returns nil without error", func(t *testing.T) {
		rec, err := engine.Get(ctx, "profiles", "no-such-id")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %v", rec)
		}
	})

	t.Run("Add rejects duplicate keys", func(t *testing.T) {
		if _, err := engine.Add(ctx, "meta", storage.Record{"key": "theme", "value": "dark"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		_, err := engine.Add(ctx, "meta", storage.Record{"key": "theme", "value": "light"})
		if !errors.Is(err, storage.ErrDuplicateKey) {
			t.Errorf("expected ErrDuplicateKey, got %v", err)
		}
	})

	t.Run("Add to natural-key collection requires a key", func(t *testing.T) {
		if _, err := engine.Add(ctx, "meta", storage.Record{"value": "orphan"}); err == nil {
			t.Error("expected error for record without key")
		}
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		key, err := engine.Put(ctx, "profiles", storage.Record{"name": "Carol"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := engine.Delete(ctx, "profiles", key); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := engine.Delete(ctx, "profiles", key); err != nil {
			t.Errorf("second Delete failed: %v", err)
		}
		rec, err := engine.Get(ctx, "profiles", key)
		if err != nil || rec != nil {
			t.Errorf("record still present after delete: %v, %v", rec, err)
		}
	})

	t.Run("unknown collection is rejected", func(t *testing.T) {
		if _, err := engine.Get(ctx, "nope", "k"); err == nil {
			t.Error("expected error for unknown collection")
		}
	})
}

func TestEngineIndexes(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		profile := "p1"
		if i == 2 {
			profile = "p2"
		}
		rec := storage.Record{"title": fmt.Sprintf("bill-%d", i), "profileId": profile}
		if _, err := engine.Add(ctx, "payments", rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	t.Run("GetAllByIndex filters by field value", func(t *testing.T) {
		recs, err := engine.GetAllByIndex(ctx, "payments", "profileId", "p1")
		if err != nil {
			t.Fatalf("GetAllByIndex failed: %v", err)
		}
		if len(recs) != 2 {
			t.Errorf("got %d records, want 2", len(recs))
		}
		for _, rec := range recs {
			if rec["profileId"] != "p1" {
				t.Errorf("record %v leaked into p1's index query", rec)
			}
		}
	})

	t.Run("GetAllByIndex with unindexed field fails", func(t *testing.T) {
		if _, err := engine.GetAllByIndex(ctx, "payments", "title", "bill-0"); err == nil {
			t.Error("expected error for unindexed field")
		}
	})

	t.Run("GetAll returns everything", func(t *testing.T) {
		recs, err := engine.GetAll(ctx, "payments")
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		if len(recs) != 3 {
			t.Errorf("got %d records, want 3", len(recs))
		}
	})

	t.Run("Clear empties the collection", func(t *testing.T) {
		if err := engine.Clear(ctx, "payments"); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		recs, err := engine.GetAll(ctx, "payments")
		if err != nil {
			t.Fatalf("GetAll failed: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("got %d records after clear, want 0", len(recs))
		}
	})
}

func TestEngineTransactions(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()

	t.Run("failed transaction rolls back every write", func(t *testing.T) {
		boom := errors.New("boom")
		err := engine.Update(ctx, func(tx storage.Tx) error {
			if _, err := tx.Put(ctx, "profiles", storage.Record{"name": "Ghost"}); err != nil {
				return err
			}
			if _, err := tx.Put(ctx, "payments", storage.Record{"title": "Phantom"}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		profiles, _ := engine.GetAll(ctx, "profiles")
		payments, _ := engine.GetAll(ctx, "payments")
		if len(profiles) != 0 || len(payments) != 0 {
			t.Errorf("rollback left %d profiles, %d payments", len(profiles), len(payments))
		}
	})

	t.Run("committed transaction persists across collections", func(t *testing.T) {
		err := engine.Update(ctx, func(tx storage.Tx) error {
			key, err := tx.Put(ctx, "profiles", storage.Record{"name": "Dana"})
			if err != nil {
				return err
			}
			_, err = tx.Put(ctx, "payments", storage.Record{"title": "Rent", "profileId": key})
			return err
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		profiles, _ := engine.GetAll(ctx, "profiles")
		payments, _ := engine.GetAll(ctx, "payments")
		if len(profiles) != 1 || len(payments) != 1 {
			t.Errorf("commit left %d profiles, %d payments, want 1 each", len(profiles), len(payments))
		}
	})
}

func TestEngineReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	engine, err := Open(dbPath, testSchema())
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	key, err := engine.Put(ctx, "profiles", storage.Record{"name": "Keeper"})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dbPath, testSchema())
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer reopened.Close()

	rec, err := reopened.Get(ctx, "profiles", key)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if rec == nil || rec["name"] != "Keeper" {
		t.Errorf("record lost across reopen: %v", rec)
	}
}

func TestOpenRejectsBadSchema(t *testing.T) {
	tests := []struct {
		name   string
		schema storage.Schema
	}{
		{"zero version", storage.Schema{Collections: []storage.Collection{{Name: "a", KeyPath: "id"}}}},
		{"no collections", storage.Schema{Version: 1}},
		{"bad collection name", storage.Schema{Version: 1, Collections: []storage.Collection{{Name: "a b", KeyPath: "id"}}}},
		{"bad index field", storage.Schema{Version: 1, Collections: []storage.Collection{{Name: "a", KeyPath: "id", Indexes: []string{"x;drop"}}}}},
		{"index on key path", storage.Schema{Version: 1, Collections: []storage.Collection{{Name: "a", KeyPath: "id", Indexes: []string{"id"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(filepath.Join(t.TempDir(), "bad.db"), tt.schema); err == nil {
				t.Error("expected schema validation error")
			}
		})
	}
}

func TestOpenUnavailablePath(t *testing.T) {
	// A directory path cannot be opened as a database file.
	dir := t.TempDir()
	_, err := Open(dir, testSchema())
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
