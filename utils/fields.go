package utils

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ParseID validates an id taken from a query string.
func ParseID(field, raw, label string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, Invalid(field, label+" cannot be empty.", CodeBlank)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, Invalid(field, label+" must be a number.", CodeInvalid)
	}
	return uint(id), nil
}

// Patch is a JSON object whose keys are inspected before decoding, so that an
// absent key can be told apart from a blank value.
type Patch map[string]json.RawMessage

// FieldRule says that Key, when present, must not be blank. Failures are
// reported under Field with Message.
type FieldRule struct {
	Key     string
	Field   string
	Message string
}

func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Blank reports whether key is present with a null or empty-string value.
func (p Patch) Blank(key string) bool {
	raw, ok := p[key]
	if !ok {
		return false
	}
	return isBlank(raw)
}

// CheckNotBlank applies the rules in order and returns the first violation.
func (p Patch) CheckNotBlank(rules ...FieldRule) error {
	for _, r := range rules {
		if p.Blank(r.Key) {
			return Invalid(r.Field, r.Message, CodeBlank)
		}
	}
	return nil
}

func (p Patch) Text(key, field string) (string, error) {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return "", Invalid(field, Label(field)+" must be a string.", CodeInvalid)
	}
	return s, nil
}

// OptionalText decodes a nullable string.
func (p Patch) OptionalText(key, field string) (*string, error) {
	if isNull(p[key]) {
		return nil, nil
	}
	s, err := p.Text(key, field)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Int accepts a JSON number or a numeric string.
func (p Patch) Int(key, field string) (int, error) {
	n, err := DecodeInt(p[key])
	if err != nil {
		return 0, Invalid(field, Label(field)+" must be a number.", CodeInvalid)
	}
	return n, nil
}

// Bool accepts true/false or their string forms.
func (p Patch) Bool(key, field string) (bool, error) {
	raw := bytes.TrimSpace(p[key])
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseBool(s); err == nil {
			return v, nil
		}
	}
	return false, Invalid(field, Label(field)+" must be a boolean.", CodeInvalid)
}

// ID decodes a required id that may arrive as a number or a numeric string.
func (p Patch) ID(key, field, label string) (uint, error) {
	raw, ok := p[key]
	if !ok || isBlank(raw) {
		return 0, Invalid(field, label+" cannot be empty.", CodeBlank)
	}
	n, err := DecodeInt(raw)
	if err != nil || n <= 0 {
		return 0, Invalid(field, label+" must be a number.", CodeInvalid)
	}
	return uint(n), nil
}

// DecodeInt decodes a JSON number or numeric string into an int.
func DecodeInt(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isBlank(raw json.RawMessage) bool {
	if isNull(raw) {
		return true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}
