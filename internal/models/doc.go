// Package models defines the core domain models for Thryv.
//
// # Entities
//
//   - Profile: a named owner context; the root of every cascade-delete chain
//   - Item: a tracked recurring obligation or measurement owned by a Profile
//   - HistoryEntry: an immutable timestamped record that an Item was fulfilled
//   - MetaEntry: a single global key-value row for device/session settings
//
// # Relationships
//
// Profile 1-to-many Item, Profile 1-to-many HistoryEntry, and Item
// 1-to-many HistoryEntry via itemId.
// Foreign keys are plain ID strings, never pointers, so records serialize
// cleanly into the snapshot format and the object store's JSON documents.
//
// # Design Principles
//
//  1. Models are plain data: validation and cascade logic live in the
//     repository layer, physical storage in the storage engine.
//  2. JSON tags are the canonical field names used by both the object store
//     (secondary indexes address fields by these names) and the snapshot
//     export format, so a field rename here is a format change.
//  3. Timestamps are time.Time values and marshal to RFC 3339 instants.
package models
