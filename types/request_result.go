package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotJSON = errors.New("response body is not valid JSON")

// RequestResult is the decoded body of one API response.
// Fields is nil when the body is valid JSON but not an object (the tag statistics
// endpoint answers with a bare array, for example).
type RequestResult struct {
	Raw    json.RawMessage
	Fields map[string]any
}

// DecodeRequestResult decodes a response body into a RequestResult.
func DecodeRequestResult(body []byte) (RequestResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return RequestResult{}, errNotJSON
	}

	result := RequestResult{Raw: json.RawMessage(trimmed)}
	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&result.Fields); err != nil {
			return RequestResult{}, fmt.Errorf("decode response object: %w", err)
		}
	}
	return result, nil
}

// HasSuccessField reports whether the envelope carries a success flag at all.
func (r RequestResult) HasSuccessField() bool {
	_, ok := r.Fields["success"]
	return ok
}

// Succeeded applies the envelope convention: a missing success flag is an implicit
// success, a present one must be truthy.
func (r RequestResult) Succeeded() bool {
	v, ok := r.Fields["success"]
	if !ok {
		return true
	}
	return truthy(v)
}

// ErrorMessage returns the server supplied error, falling back to message.
func (r RequestResult) ErrorMessage() string {
	if msg := r.String("error"); msg != "" {
		return msg
	}
	return r.String("message")
}

// String returns the field as text. Non-string values are rendered as JSON.
func (r RequestResult) String(key string) string {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// Int returns a numeric field, accepting numbers and numeric strings.
func (r RequestResult) Int(key string) int64 {
	var n Numeric
	if err := n.UnmarshalJSON([]byte(r.jsonOf(key))); err != nil {
		return 0
	}
	return int64(n)
}

// Decode unmarshals the whole body into v.
func (r RequestResult) Decode(v any) error {
	return json.Unmarshal(r.Raw, v)
}

func (r RequestResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

func (r RequestResult) jsonOf(key string) string {
	v, ok := r.Fields[key]
	if !ok {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	case float64:
		return val != 0
	case string:
		s := strings.TrimSpace(strings.ToLower(val))
		return s != "" && s != "0" && s != "false"
	default:
		return true
	}
}
