// Package snapshot serializes the whole database (or a single profile's
// slice of it) to a portable JSON document, and loads such documents back.
// Loading remaps entity IDs so a snapshot can be imported into a database
// that already has data without key collisions.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/vky3831/thryv/internal/storage"
)

// ErrInvalidSnapshot is returned when a document cannot be recognized as a
// snapshot. Nothing is imported from an invalid document.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Mode selects how an import treats data already in the database.
type Mode string

const (
	// Merge adds the snapshot's records alongside existing ones. Imported
	// entities receive fresh IDs, so merging never overwrites and never
	// shrinks the database.
	Merge Mode = "merge"

	// Replace clears every collection before loading, so the database ends
	// up holding exactly the snapshot's contents.
	Replace Mode = "replace"
)

// Snapshot is the portable form of the database.
type Snapshot struct {
	// ExportedAt records when the snapshot was taken.
	ExportedAt time.Time `json:"exportedAt"`

	// Profiles, Items and History hold the entity documents, keys included.
	Profiles []storage.Record `json:"profiles"`
	Items    []storage.Record `json:"items"`
	History  []storage.Record `json:"history"`

	// Meta holds the device-level settings as a flat key-value map. Empty
	// for single-profile snapshots.
	Meta map[string]string `json:"meta,omitempty"`
}

// Filename suggests a file name for a snapshot. profileID is empty for a
// full export.
func Filename(profileID string) string {
	if profileID == "" {
		return "thryv_export.json"
	}
	return fmt.Sprintf("thryv_profile_%s.json", profileID)
}
