package models

import (
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present in the document.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked when the key is present
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// MarshalJSON renders the value or null
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// SetString returns an OptionalString holding s
func SetString(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

// SetNull returns an OptionalString holding an explicit null
func SetNull() OptionalString {
	return OptionalString{Set: true}
}
