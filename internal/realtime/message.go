package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Event names pushed by the backend.
const (
	EventNewEvent     = "newEvent"
	EventUpdatedEvent = "updatedEvent"
	EventReminder     = "event-reminder"
)

var ErrBadFrame = errors.New("realtime: malformed frame")

// Message is one named server push.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode accepts {"event": name, "data": ...} and the array form [name, data].
func Decode(frame []byte) (Message, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return Message{}, ErrBadFrame
	}

	var m Message
	switch frame[0] {
	case '{':
		if err := json.Unmarshal(frame, &m); err != nil {
			return Message{}, errors.Join(ErrBadFrame, err)
		}
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(frame, &parts); err != nil {
			return Message{}, errors.Join(ErrBadFrame, err)
		}
		if len(parts) == 0 {
			return Message{}, ErrBadFrame
		}
		if err := json.Unmarshal(parts[0], &m.Event); err != nil {
			return Message{}, errors.Join(ErrBadFrame, err)
		}
		if len(parts) > 1 {
			m.Data = parts[1]
		}
	default:
		return Message{}, ErrBadFrame
	}

	if m.Event == "" {
		return Message{}, ErrBadFrame
	}
	return m, nil
}

// Encode renders the object form.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Event: event, Data: raw})
}
