package httpstages

import (
	"encoding/json"
	"fmt"
)

// ParseJSON unmarshals raw JSON into a generic value (map[string]interface{}
// for objects, []interface{} for arrays). Input must be []byte or string.
func ParseJSON(raw interface{}) (interface{}, error) {
	data, err := rawBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("parsejson: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsejson: %w", err)
	}
	return out, nil
}

// DecodeInto returns a callable that unmarshals raw JSON into a *T.
func DecodeInto[T any]() func(raw interface{}) (*T, error) {
	return func(raw interface{}) (*T, error) {
		data, err := rawBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		var out T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return &out, nil
	}
}

func rawBytes(raw interface{}) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("input must be []byte or string, got %T", raw)
	}
}
