package models

// MetaEntry is a single global key-value row for device or session level
// settings. One row per key, overwritten in place, never versioned.
type MetaEntry struct {
	// Key is the primary key ("currentProfile", "session", "theme", ...).
	Key string `json:"key"`

	// Value is the opaque stored value.
	Value string `json:"value"`
}

// Well-known meta keys.
const (
	// MetaCurrentProfile holds the ID of the profile the user last opened.
	MetaCurrentProfile = "currentProfile"

	// MetaSession holds the signed session token issued at login.
	MetaSession = "session"

	// MetaSessionSecret holds the device-local secret the session tokens
	// are signed with, generated on first login when the config does not
	// provide one.
	MetaSessionSecret = "sessionSecret"

	// MetaTheme holds the UI theme preference ("light" or "dark").
	MetaTheme = "theme"
)
