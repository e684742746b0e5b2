package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedMessage = errors.New("stream message is not a JSON object")
	ErrMissingType      = errors.New("stream message has no string type field")
)

// Message is one decoded push frame. Only Type is inspected; every other
// field is passed through to the handler untouched.
type Message struct {
	Type   string
	Raw    json.RawMessage
	fields map[string]json.RawMessage
}

// DecodeMessage parses a text frame into a Message.
func DecodeMessage(data []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if fields == nil {
		return Message{}, ErrMalformedMessage
	}

	rawType, ok := fields["type"]
	if !ok {
		return Message{}, ErrMissingType
	}
	var msgType string
	if err := json.Unmarshal(rawType, &msgType); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMissingType, err)
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	return Message{
		Type:   msgType,
		Raw:    raw,
		fields: fields,
	}, nil
}

// Field returns the raw JSON of a top-level field.
func (m Message) Field(name string) (json.RawMessage, bool) {
	v, ok := m.fields[name]
	return v, ok
}

// Decode unmarshals the whole frame into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Raw, v)
}
