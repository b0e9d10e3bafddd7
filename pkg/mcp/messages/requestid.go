package messages

import (
	"encoding/json"
	"fmt"
)

// RequestID is a JSON-RPC identifier: a string or a non-fractional
// number. The zero value is the absent id. RequestID is comparable and
// usable as a map key.
type RequestID struct {
	value any // string or int64
}

// NewIntID creates a numeric request id.
func NewIntID(n int64) RequestID {
	return RequestID{value: n}
}

// NewStringID creates a string request id.
func NewStringID(s string) RequestID {
	return RequestID{value: s}
}

// IsNil reports whether the id is absent.
func (id RequestID) IsNil() bool {
	return id.value == nil
}

// String returns a human-readable form of the id for diagnostics.
func (id RequestID) String() string {
	switch v := id.value.(type) {
	case nil:
		return "<none>"
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// MarshalJSON implements json.Marshaler.
func (id RequestID) MarshalJSON() ([]byte, error) {
	if id.value == nil {
		return []byte("null"), nil
	}

	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler. Numbers with a fractional
// part are rejected: the protocol permits only strings and integers.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num != float64(int64(num)) {
			return fmt.Errorf("request id must not be fractional, got %s", string(data))
		}
		id.value = int64(num)

		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		id.value = str

		return nil
	}

	return fmt.Errorf("request id must be a string or number, got %s", string(data))
}
