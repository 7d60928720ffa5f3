package catalog

import (
	"encoding/json"
)

// Meta is the optional pagination block of a list response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type envelope struct {
	Success json.RawMessage `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
}

// decodeEnvelope extracts the records of a {success, data, meta} response.
// It reports false when the body is not JSON, success is not true, or data
// is not an array.
func decodeEnvelope(body []byte) ([]json.RawMessage, *Meta, bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, false
	}
	var success bool
	if err := json.Unmarshal(env.Success, &success); err != nil || !success {
		return nil, nil, false
	}
	if kindOf(env.Data) != kindArray {
		return nil, nil, false
	}
	var records []json.RawMessage
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, nil, false
	}
	return records, env.Meta, true
}
