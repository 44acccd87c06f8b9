package models

import "time"

// DefaultCustomTypes are the measurement types seeded into a new profile.
var DefaultCustomTypes = []string{"Blood Sugar", "Weight", "BMI"}

// DefaultCustomUnits are the measurement units seeded into a new profile.
var DefaultCustomUnits = []string{"mg/dL", "kg", "kg/m2"}

// Profile represents a named owner context. Every Item and HistoryEntry
// belongs to exactly one profile, and deleting a profile removes them all.
type Profile struct {
	// ID is the unique identifier for the profile (UUID format).
	ID string `json:"id"`

	// Name is the display name of the profile. Never empty.
	Name string `json:"name"`

	// PasskeyHash is the bcrypt hash of the profile's passkey. Legacy
	// imports may carry a SHA-256 hex digest or a plaintext passkey here;
	// verification handles all three forms.
	PasskeyHash string `json:"passkeyHash,omitempty"`

	// DOB is the date of birth as entered by the user, free-form.
	DOB string `json:"dob,omitempty"`

	// CustomTypes is the list of measurement types this profile tracks.
	CustomTypes []string `json:"customTypes,omitempty"`

	// CustomUnits is the list of measurement units this profile uses.
	CustomUnits []string `json:"customUnits,omitempty"`

	// CreatedAt is when the profile was created.
	CreatedAt time.Time `json:"createdAt"`
}
