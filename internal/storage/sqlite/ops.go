package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/vky3831/thryv/internal/storage"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the same operation code serves both the engine and its transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ops struct {
	q    querier
	cols map[string]storage.Collection
}

func (o ops) collection(name string) (storage.Collection, error) {
	col, ok := o.cols[name]
	if !ok {
		return storage.Collection{}, fmt.Errorf("unknown collection %q", name)
	}
	return col, nil
}

// Get retrieves a single record by primary key. Absent keys yield (nil, nil).
func (o ops) Get(ctx context.Context, collection string, key any) (storage.Record, error) {
	col, err := o.collection(collection)
	if err != nil {
		return nil, err
	}
	k, err := normalizeKey(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", collection, err)
	}

	var rawKey any
	var doc string
	row := o.q.QueryRowContext(ctx, "SELECT k, doc FROM "+col.Name+" WHERE k = ?", k)
	if err := row.Scan(&rawKey, &doc); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("getting from %s: %w", collection, err)
	}
	return decodeRow(col, rawKey, doc)
}

// GetAll retrieves every record in a collection in primary-key order.
func (o ops) GetAll(ctx context.Context, collection string) ([]storage.Record, error) {
	col, err := o.collection(collection)
	if err != nil {
		return nil, err
	}
	rows, err := o.q.QueryContext(ctx, "SELECT k, doc FROM "+col.Name+" ORDER BY k")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	return collectRows(col, rows)
}

// GetAllByIndex retrieves every record whose indexed field equals value.
func (o ops) GetAllByIndex(ctx context.Context, collection, index string, value any) ([]storage.Record, error) {
	col, err := o.collection(collection)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(col.Indexes, index) {
		return nil, fmt.Errorf("collection %s has no index on %q", collection, index)
	}
	v, err := normalizeKey(value)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", collection, index, err)
	}

	query := fmt.Sprintf("SELECT k, doc FROM %s WHERE json_extract(doc, '$.%s') = ? ORDER BY k", col.Name, index)
	rows, err := o.q.QueryContext(ctx, query, v)
	if err != nil {
		return nil, fmt.Errorf("reading %s by %s: %w", collection, index, err)
	}
	return collectRows(col, rows)
}

// Put inserts or replaces a record keyed by its primary-key field, assigning
// a fresh key first when the collection generates keys and the record has
// none. The assigned or existing key is returned.
func (o ops) Put(ctx context.Context, collection string, rec storage.Record) (any, error) {
	return o.write(ctx, collection, rec, true)
}

// Add inserts a record, failing with storage.ErrDuplicateKey if its key
// already exists.
func (o ops) Add(ctx context.Context, collection string, rec storage.Record) (any, error) {
	return o.write(ctx, collection, rec, false)
}

func (o ops) write(ctx context.Context, collection string, rec storage.Record, replace bool) (any, error) {
	col, err := o.collection(collection)
	if err != nil {
		return nil, err
	}

	key, doc, err := encodeRow(col, rec)
	if err != nil {
		return nil, fmt.Errorf("writing to %s: %w", collection, err)
	}

	if key == nil {
		switch col.Keys {
		case storage.KeySequence:
			res, err := o.q.ExecContext(ctx, "INSERT INTO "+col.Name+" (doc) VALUES (?)", doc)
			if err != nil {
				return nil, fmt.Errorf("inserting into %s: %w", collection, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("inserting into %s: %w", collection, err)
			}
			return id, nil
		case storage.KeyUUID:
			key = uuid.New().String()
		default:
			return nil, fmt.Errorf("writing to %s: record missing key field %q", collection, col.KeyPath)
		}
	}

	query := "INSERT INTO " + col.Name + " (k, doc) VALUES (?, ?)"
	if replace {
		query += " ON CONFLICT(k) DO UPDATE SET doc = excluded.doc"
	}
	if _, err := o.q.ExecContext(ctx, query, key, doc); err != nil {
		if !replace && strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("%w: %s key %v", storage.ErrDuplicateKey, collection, key)
		}
		return nil, fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return key, nil
}

// Delete removes a record by key. Deleting an absent key is a no-op.
func (o ops) Delete(ctx context.Context, collection string, key any) error {
	col, err := o.collection(collection)
	if err != nil {
		return err
	}
	k, err := normalizeKey(key)
	if err != nil {
		return fmt.Errorf("%s: %w", collection, err)
	}
	if _, err := o.q.ExecContext(ctx, "DELETE FROM "+col.Name+" WHERE k = ?", k); err != nil {
		return fmt.Errorf("deleting from %s: %w", collection, err)
	}
	return nil
}

// Clear removes every record in a collection.
func (o ops) Clear(ctx context.Context, collection string) error {
	col, err := o.collection(collection)
	if err != nil {
		return err
	}
	if _, err := o.q.ExecContext(ctx, "DELETE FROM "+col.Name); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	return nil
}

// encodeRow splits a record into its key and a JSON document with the key
// field stripped; decodeRow is its inverse. Stripping the key keeps the
// column the single authority on identity.
func encodeRow(col storage.Collection, rec storage.Record) (any, []byte, error) {
	stripped := make(storage.Record, len(rec))
	for k, v := range rec {
		if k == col.KeyPath {
			continue
		}
		stripped[k] = v
	}
	doc, err := json.Marshal(stripped)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding document: %w", err)
	}

	raw, ok := rec[col.KeyPath]
	if !ok || raw == nil {
		return nil, doc, nil
	}
	key, err := normalizeKey(raw)
	if err != nil {
		return nil, nil, err
	}
	return key, doc, nil
}

func decodeRow(col storage.Collection, rawKey any, doc string) (storage.Record, error) {
	var rec storage.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if b, ok := rawKey.([]byte); ok {
		rawKey = string(b)
	}
	rec[col.KeyPath] = rawKey
	return rec, nil
}

func collectRows(col storage.Collection, rows *sql.Rows) ([]storage.Record, error) {
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		var rawKey any
		var doc string
		if err := rows.Scan(&rawKey, &doc); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", col.Name, err)
		}
		rec, err := decodeRow(col, rawKey, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", col.Name, err)
	}
	return out, nil
}

// normalizeKey maps the supported key representations onto the two storable
// forms, string and int64. JSON decoding turns integer keys into float64;
// those are folded back so lookups round-trip.
func normalizeKey(key any) (any, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case int:
		return int64(k), nil
	case int32:
		return int64(k), nil
	case int64:
		return k, nil
	case float64:
		if k != float64(int64(k)) {
			return nil, fmt.Errorf("non-integral key %v", k)
		}
		return int64(k), nil
	case json.Number:
		if i, err := k.Int64(); err == nil {
			return i, nil
		}
		return k.String(), nil
	default:
		return nil, fmt.Errorf("unsupported key type %T", key)
	}
}
