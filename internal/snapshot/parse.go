package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vky3831/thryv/internal/schedule"
	"github.com/vky3831/thryv/internal/storage"
)

// Field renames applied to documents coming out of the apps Thryv
// consolidates. The canonical name wins when both are present.
var (
	profileAliases = map[string]string{
		"passkey":  "passkeyHash",
		"passHash": "passkeyHash",
	}
	itemAliases = map[string]string{
		"userId":  "profileId",
		"medName": "title",
		"name":    "title",
	}
	historyAliases = map[string]string{
		"userId":       "profileId",
		"paymentId":    "itemId",
		"medId":        "itemId",
		"medName":      "itemTitle",
		"remarks":      "note",
		"datePaid":     "timestamp",
		"timeTakenISO": "timestamp",
		"datetime":     "timestamp",
	}
)

// Top-level array names older exports used for what is now the items
// collection.
var legacyItemArrays = []string{"payments", "medicines", "records"}

// Parse reads a snapshot document, accepting both the canonical shape and
// the export shapes of the individual legacy apps. A document without a
// profiles array is rejected with ErrInvalidSnapshot.
func Parse(data []byte) (*Snapshot, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	rawProfiles, ok := raw["profiles"]
	if !ok {
		return nil, fmt.Errorf("%w: missing profiles", ErrInvalidSnapshot)
	}
	profiles, err := asRecords(rawProfiles)
	if err != nil {
		return nil, fmt.Errorf("%w: profiles: %v", ErrInvalidSnapshot, err)
	}

	snap := &Snapshot{Meta: map[string]string{}}
	if ts, ok := raw["exportedAt"].(string); ok {
		snap.ExportedAt, _ = time.Parse(time.RFC3339, ts)
	}

	for _, p := range profiles {
		applyAliases(p, profileAliases)
		// Some apps nested the profile's items inside the profile document.
		if nested, ok := p["medicines"]; ok {
			items, err := asRecords(nested)
			if err != nil {
				return nil, fmt.Errorf("%w: nested items: %v", ErrInvalidSnapshot, err)
			}
			for _, item := range items {
				applyAliases(item, itemAliases)
				if err := normalizeItemSchedule(item); err != nil {
					return nil, fmt.Errorf("%w: item schedule: %v", ErrInvalidSnapshot, err)
				}
				item["profileId"] = p["id"]
				snap.Items = append(snap.Items, item)
			}
			delete(p, "medicines")
		}
		snap.Profiles = append(snap.Profiles, p)
	}

	itemKeys := append([]string{"items"}, legacyItemArrays...)
	for _, key := range itemKeys {
		rawItems, ok := raw[key]
		if !ok {
			continue
		}
		items, err := asRecords(rawItems)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, key, err)
		}
		for _, item := range items {
			applyAliases(item, itemAliases)
			if err := normalizeItemSchedule(item); err != nil {
				return nil, fmt.Errorf("%w: item schedule: %v", ErrInvalidSnapshot, err)
			}
			snap.Items = append(snap.Items, item)
		}
	}

	if rawHistory, ok := raw["history"]; ok {
		entries, err := asRecords(rawHistory)
		if err != nil {
			return nil, fmt.Errorf("%w: history: %v", ErrInvalidSnapshot, err)
		}
		for _, entry := range entries {
			applyAliases(entry, historyAliases)
			snap.History = append(snap.History, entry)
		}
	}

	if err := parseMeta(raw, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func parseMeta(raw map[string]any, snap *Snapshot) error {
	switch meta := raw["meta"].(type) {
	case nil:
	case map[string]any:
		for key, value := range meta {
			snap.Meta[key] = fmt.Sprintf("%v", value)
		}
	case []any:
		// Row form, as the meta collection stores it.
		rows, err := asRecords(meta)
		if err != nil {
			return fmt.Errorf("%w: meta: %v", ErrInvalidSnapshot, err)
		}
		for _, row := range rows {
			key, ok := row["key"].(string)
			if !ok {
				return fmt.Errorf("%w: meta row without key", ErrInvalidSnapshot)
			}
			snap.Meta[key] = fmt.Sprintf("%v", row["value"])
		}
	default:
		return fmt.Errorf("%w: meta is neither object nor array", ErrInvalidSnapshot)
	}

	// Older exports carried the active profile as a top-level field.
	if current, ok := raw["currentProfileId"]; ok {
		if _, exists := snap.Meta["currentProfile"]; !exists {
			snap.Meta["currentProfile"] = storage.KeyString(current)
		}
	}
	return nil
}

func asRecords(v any) ([]storage.Record, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", v)
	}
	recs := make([]storage.Record, 0, len(list))
	for _, elem := range list {
		rec, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %T", elem)
		}
		recs = append(recs, storage.Record(rec))
	}
	return recs, nil
}

// normalizeItemSchedule converts the raw recurrence fields of legacy item
// documents (a cycle kind plus dateText, weekDays or monthDay) into the
// parsed schedule descriptor stored today. Without this, imported legacy
// items would carry no descriptor and never show up as due.
func normalizeItemSchedule(rec storage.Record) error {
	if _, ok := rec["schedule"]; ok {
		return nil
	}
	rawKind, ok := rec["cycle"].(string)
	if !ok {
		return nil
	}
	kind := schedule.Kind(strings.ToLower(strings.TrimSpace(rawKind)))

	var text string
	switch {
	case rec["dateText"] != nil:
		text, _ = rec["dateText"].(string)
	case rec["weekDays"] != nil:
		names, err := weekdayNames(rec["weekDays"])
		if err != nil {
			return err
		}
		text = strings.Join(names, ",")
	case rec["monthDay"] != nil:
		if day, ok := rec["monthDay"].(float64); ok {
			text = strconv.Itoa(int(day))
		}
	}

	descriptor, err := schedule.Parse(kind, text)
	if err != nil {
		return err
	}
	encoded, err := storage.EncodeRecord(descriptor)
	if err != nil {
		return err
	}
	rec["schedule"] = encoded
	for _, field := range []string{"cycle", "dateText", "weekDays", "monthDay"} {
		delete(rec, field)
	}
	return nil
}

// weekdayNames renders a legacy weekDays array, which holds either weekday
// names or numeric weekday indices, as a name list for schedule.Parse.
func weekdayNames(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a weekday array, got %T", v)
	}
	names := make([]string, 0, len(list))
	for _, elem := range list {
		switch wd := elem.(type) {
		case string:
			names = append(names, wd)
		case float64:
			names = append(names, time.Weekday(int(wd)).String())
		default:
			return nil, fmt.Errorf("unexpected weekday %v", elem)
		}
	}
	return names, nil
}

func applyAliases(rec storage.Record, aliases map[string]string) {
	for legacy, canonical := range aliases {
		value, ok := rec[legacy]
		if !ok {
			continue
		}
		if _, exists := rec[canonical]; !exists {
			rec[canonical] = value
		}
		delete(rec, legacy)
	}
}
