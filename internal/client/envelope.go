package client

import (
	"encoding/json"
	"strconv"
	"strings"
)

// decodeList decodes a backend list payload into out (a pointer to a slice).
// The backend is inconsistent about list shapes: some endpoints return a bare
// JSON array, paged endpoints wrap it as {"content": [...]}, others as
// {"data": [...]}. The shape is resolved once here so everything downstream
// sees a plain slice. Empty or absent payloads decode to an empty slice, not
// an error.
func decodeList(body []byte, out interface{}) error {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(body, out)
	}

	var wrapper struct {
		Content json.RawMessage `json:"content"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return err
	}

	inner := wrapper.Content
	if inner == nil {
		inner = wrapper.Data
	}
	if inner == nil || strings.TrimSpace(string(inner)) == "null" {
		return nil
	}
	return json.Unmarshal(inner, out)
}

// decodeItem decodes a single-object payload, unwrapping a {"data": {...}}
// envelope when present
func decodeItem(body []byte, out interface{}) error {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Data != nil {
		return json.Unmarshal(wrapper.Data, out)
	}
	return json.Unmarshal(body, out)
}

// flexibleString tolerates backends that serialize identifiers as either
// JSON strings or numbers
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleString(n.String())
	return nil
}

// stringList tolerates option lists serialized either as a JSON array of
// strings or as a JSON-encoded string holding such an array
func decodeStringList(raw json.RawMessage) []string {
	if raw == nil {
		return []string{}
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			return []string{}
		}
		return list
	}

	// Double-encoded: "[\"A\",\"B\"]"
	if strings.HasPrefix(trimmed, `"`) {
		if unquoted, err := strconv.Unquote(trimmed); err == nil {
			if err := json.Unmarshal([]byte(unquoted), &list); err == nil && list != nil {
				return list
			}
		}
	}
	return []string{}
}
