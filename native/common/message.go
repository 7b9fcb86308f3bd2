package common

import (
	"bytes"
	"encoding/json"
)

// DecodeMessage parses a tagged request such as {"claim":{}} into v, a struct
// of pointer fields with one field per tag. Unknown tags and objects with
// more or fewer than one tag are rejected.
func DecodeMessage(raw json.RawMessage, v interface{}) error {
	var tags map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tags); err != nil {
		return InvalidMessage("decode message: %v", err)
	}
	if len(tags) != 1 {
		return InvalidMessage("message must carry exactly one action, got %d", len(tags))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return InvalidMessage("decode message: %v", err)
	}
	return nil
}

// DecodeInit parses an instantiation payload strictly.
func DecodeInit(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return InvalidMessage("decode init: %v", err)
	}
	return nil
}
