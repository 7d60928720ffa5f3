package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// The catalog API serializes several columns inconsistently: the same field
// may arrive as a JSON document, as a string holding a JSON document, or as
// garbage. The helpers below never fail; they degrade to zero values.

type valueKind int

const (
	kindMissing valueKind = iota
	kindNull
	kindString
	kindNumber
	kindBool
	kindArray
	kindObject
)

func kindOf(raw json.RawMessage) valueKind {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return kindMissing
	}
	switch b[0] {
	case 'n':
		return kindNull
	case '"':
		return kindString
	case 't', 'f':
		return kindBool
	case '[':
		return kindArray
	case '{':
		return kindObject
	default:
		return kindNumber
	}
}

// unwrapEncoded returns the JSON document held by a string value when it
// parses, and the raw value otherwise.
func unwrapEncoded(raw json.RawMessage) json.RawMessage {
	if kindOf(raw) != kindString {
		return raw
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	inner := json.RawMessage(strings.TrimSpace(s))
	if !json.Valid(inner) {
		return raw
	}
	return inner
}

// looseString returns the text of a string value, the literal of a number or
// boolean, and "" for anything else.
func looseString(raw json.RawMessage) string {
	switch kindOf(raw) {
	case kindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case kindNumber:
		if d, err := decimal.NewFromString(string(bytes.TrimSpace(raw))); err == nil {
			return d.String()
		}
		return string(bytes.TrimSpace(raw))
	case kindBool:
		return string(bytes.TrimSpace(raw))
	default:
		return ""
	}
}

// looseNumber parses numbers and numeric strings, folding localized digits.
func looseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	switch kindOf(raw) {
	case kindNumber, kindString:
		return ParseNumber(looseString(raw))
	default:
		return decimal.Zero, false
	}
}

// looseStrings decodes an array of scalars, possibly string-encoded. Anything
// that is not an array yields an empty slice. Positions are kept, so a blank
// item stays blank.
func looseStrings(raw json.RawMessage) []string {
	raw = unwrapEncoded(raw)
	if kindOf(raw) != kindArray {
		return []string{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, looseString(item))
	}
	return out
}

type member struct {
	key   string
	value json.RawMessage
}

// looseObject decodes an object, possibly string-encoded, keeping the source
// key order. Anything that is not an object yields nil.
func looseObject(raw json.RawMessage) []member {
	raw = unwrapEncoded(raw)
	if kindOf(raw) != kindObject {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		members = append(members, member{key: key, value: value})
	}
	return members
}

// field returns the value stored under key in an object, or nil.
func field(members []member, key string) json.RawMessage {
	for i := len(members) - 1; i >= 0; i-- {
		if members[i].key == key {
			return members[i].value
		}
	}
	return nil
}

// path walks nested objects, unwrapping string-encoded levels.
func path(raw json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		raw = field(looseObject(raw), key)
		if raw == nil {
			return nil
		}
	}
	return raw
}

// displayValue renders a property value: scalars as text, structures as
// compact JSON.
func displayValue(raw json.RawMessage) string {
	switch kindOf(raw) {
	case kindString, kindNumber, kindBool:
		return looseString(raw)
	case kindMissing:
		return ""
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	}
}
