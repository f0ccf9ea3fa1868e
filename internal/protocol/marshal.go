package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMessage is returned for frames that are not a well-formed envelope
// or whose data does not match the message type.
var ErrInvalidMessage = errors.New("invalid message")

// Message is the envelope every frame travels in.
type Message struct {
	Type      Type            `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// New wraps data in an envelope stamped with now.
func New(t Type, data any, now time.Time) (*Message, error) {
	msg := &Message{Type: t, Timestamp: now.UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("protocol: encoding %s: %w", t, err)
		}
		msg.Data = raw
	}
	return msg, nil
}

// Decode unmarshals the message data into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		m.Data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%w: %s data: %v", ErrInvalidMessage, m.Type, err)
	}
	return nil
}

// Marshal serializes the envelope.
func Marshal(m *Message) ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal parses an envelope. The data payload is left raw for Decode.
func Unmarshal(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return &m, nil
}
