package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is the envelope layout written by NewEvent. Decoding
// rejects envelopes from a newer layout.
const EnvelopeVersion = 1

var (
	ErrMalformedEvent     = errors.New("malformed event envelope")
	ErrUnsupportedVersion = errors.New("unsupported event envelope version")
)

// Aggregate names the entity an event belongs to. Its ID is used as the
// message key, so all events of one aggregate share a partition.
type Aggregate struct {
	Type string `json:"aggregate_type"`
	ID   string `json:"aggregate_id"`
}

// Event is the envelope written as the value of every Kafka message.
type Event struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Aggregate
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope for agg, stamped with a fresh id and
// the current UTC time.
func NewEvent(eventType string, agg Aggregate, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", eventType, err)
	}

	return &Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Aggregate: agg,
		Version:   EnvelopeVersion,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Data:      raw,
	}, nil
}

func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string, 1)
	}
	e.Metadata[key] = value
	return e
}

// Key is the partition key of the event.
func (e *Event) Key() []byte {
	return []byte(e.Aggregate.ID)
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes a message value written by Producer.Publish. The
// envelope must carry an event id and type, and a version this package
// understands.
func UnmarshalEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if e.EventID == "" || e.EventType == "" {
		return nil, fmt.Errorf("%w: missing event id or type", ErrMalformedEvent)
	}
	if e.Version < 1 || e.Version > EnvelopeVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, e.Version)
	}
	return &e, nil
}

// UnmarshalData decodes the event payload into target.
func (e *Event) UnmarshalData(target any) error {
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("decode %s data: %w", e.EventType, err)
	}
	return nil
}
