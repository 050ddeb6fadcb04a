package domain

import (
	"encoding/json"
	"fmt"
)

// Payload is a response body that has already been verified to be valid JSON.
type Payload json.RawMessage

func (p Payload) Decode(v any) error {
	if err := json.Unmarshal(p, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func (p Payload) String() string {
	return string(p)
}
