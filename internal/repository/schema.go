// Package repository layers entity semantics over the object store: field
// validation, derived timestamps, cascade deletion and period queries. All
// physical storage goes through the storage.Store the repositories share.
package repository

import "github.com/vky3831/thryv/internal/storage"

// Collection names in the canonical database.
const (
	CollectionProfiles = "profiles"
	CollectionItems    = "items"
	CollectionHistory  = "history"
	CollectionMeta     = "meta"
)

// Index names (the document fields they cover).
const (
	IndexName      = "name"
	IndexProfileID = "profileId"
	IndexItemID    = "itemId"
)

// Schema describes the canonical Thryv database: profiles own items and
// history entries, both reachable by profileId; history is also reachable
// by itemId for item-level cascades and period checks.
func Schema() storage.Schema {
	return storage.Schema{
		Version: 1,
		Collections: []storage.Collection{
			{Name: CollectionProfiles, KeyPath: "id", Keys: storage.KeyUUID, Indexes: []string{IndexName}},
			{Name: CollectionItems, KeyPath: "id", Keys: storage.KeyUUID, Indexes: []string{IndexProfileID}},
			{Name: CollectionHistory, KeyPath: "id", Keys: storage.KeyUUID, Indexes: []string{IndexProfileID, IndexItemID}},
			{Name: CollectionMeta, KeyPath: "key", Keys: storage.KeyNatural},
		},
	}
}
