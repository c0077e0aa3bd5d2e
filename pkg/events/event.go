package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event defines the contract for all lifecycle events.
type Event interface {
	// EventType returns the dotted event name (e.g. "rams.session_started").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete event carried on every bus.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Encode serializes any Event into the wire envelope.
func Encode(e Event) ([]byte, error) {
	b, err := json.Marshal(BaseEvent{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", e.EventType(), err)
	}
	return b, nil
}

// Decode parses an envelope produced by Encode.
func Decode(data []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("event has no type")
	}
	return e, nil
}
