package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EncodeRecord converts a typed model into a Record through its JSON form.
func EncodeRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return rec, nil
}

// DecodeRecord converts a Record back into a typed model through its JSON
// form. out must be a pointer.
func DecodeRecord(rec Record, out any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	return nil
}

// KeyString renders any supported key value canonically, so keys that
// travelled through JSON (where integers become float64) compare equal to
// their originals. Used for building ID remapping tables.
func KeyString(key any) string {
	switch k := key.(type) {
	case nil:
		return ""
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case float64:
		if k == float64(int64(k)) {
			return strconv.FormatInt(int64(k), 10)
		}
		return strconv.FormatFloat(k, 'g', -1, 64)
	case json.Number:
		return k.String()
	default:
		return fmt.Sprintf("%v", k)
	}
}
