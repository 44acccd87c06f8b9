package models

import (
	"time"

	"github.com/vky3831/thryv/internal/schedule"
)

// Item represents a tracked recurring obligation or measurement: a periodic
// payment, a medicine dose, a health reading. The generic shape covers all
// of them; Category carries the app-specific type.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// ProfileID is the owning profile. Required; not validated at write
	// time, referential integrity is maintained by cascade deletion.
	ProfileID string `json:"profileId"`

	// Title is the human-readable name of the item. Never empty.
	Title string `json:"title"`

	// Category is the free-form type or category ("Rent", "Insulin", ...).
	Category string `json:"category,omitempty"`

	// Schedule describes when the item recurs. Parsed and validated once
	// when the item is saved, never re-parsed on evaluation.
	Schedule schedule.Descriptor `json:"schedule"`

	// Notes is free-form user text.
	Notes string `json:"notes,omitempty"`

	// CreatedAt is when the item was created.
	CreatedAt time.Time `json:"createdAt"`
}
