package models

import "time"

// HistoryEntry records that an item's obligation was fulfilled at a point in
// time. Entries are append-only: they are created and deleted, never mutated.
type HistoryEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// ProfileID is the owning profile.
	ProfileID string `json:"profileId"`

	// ItemID is the item this entry fulfils.
	ItemID string `json:"itemId"`

	// ItemTitle is the item's title at the time the entry was recorded,
	// denormalized so history renders without a join even after the item
	// is deleted or renamed.
	ItemTitle string `json:"itemTitle,omitempty"`

	// Note is free-form user text (remarks, dosage, measured value).
	Note string `json:"note,omitempty"`

	// Timestamp is when the obligation was fulfilled. Used for
	// most-recent-first ordering and for per-period membership checks.
	Timestamp time.Time `json:"timestamp"`
}
