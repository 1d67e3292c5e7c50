package models

import (
	"encoding/json"
	"strings"
)

// extraFields returns the top-level keys of a JSON object that are not in
// known. Known keys match case-insensitively, as they do for encoding/json
// and for the bson decoder, so "Role" never survives as an extra. Keys that
// Mongo would read as operators or paths are dropped too.
func extraFields(data []byte, known []string) (map[string]interface{}, error) {
	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k := range all {
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") || isKnownKey(k, known) {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func isKnownKey(key string, known []string) bool {
	for _, k := range known {
		if strings.EqualFold(key, k) {
			return true
		}
	}
	return false
}

// marshalWithExtra flattens extra next to the typed fields. Typed fields win
// on key collisions.
func marshalWithExtra(typed interface{}, extra map[string]interface{}) ([]byte, error) {
	base, err := json.Marshal(typed)
	if err != nil || len(extra) == 0 {
		return base, err
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; ok {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}
