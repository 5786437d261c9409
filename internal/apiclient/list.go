package apiclient

import (
	"bytes"
	"encoding/json"
)

// decodeList accepts either a bare JSON array or an object wrapping the array
// under one of keys. Anything else decodes to an empty, non-nil slice.
func decodeList[T any](raw json.RawMessage, keys ...string) []T {
	out := []T{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return out
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return []T{}
		}
		return out
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return out
	}
	for _, k := range keys {
		inner, ok := obj[k]
		if !ok {
			continue
		}
		inner = bytes.TrimSpace(inner)
		if len(inner) == 0 || inner[0] != '[' {
			continue
		}
		if err := json.Unmarshal(inner, &out); err != nil {
			return []T{}
		}
		return out
	}
	return out
}
