package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bargir/dispatch-gateway/pkg/redis"
)

// Kind labels what happened to a shipment.
type Kind string

const (
	KindDriverAssigned Kind = "driver_assigned"
	KindStatusChanged  Kind = "status_changed"
)

// Event is the compact record published to the shipment stream after each
// successful assignment-engine write. It is an operational feed for the
// tracker, not a delivery channel for ledger messages.
type Event struct {
	Kind           Kind      `json:"kind"`
	ShipmentID     int64     `json:"shipment_id"`
	ShipmentNumber string    `json:"shipment_number"`
	Status         string    `json:"status"`
	DriverID       *int64    `json:"driver_id,omitempty"`
	At             time.Time `json:"at"`
}

const payloadField = "payload"

type StreamConfig struct {
	Name          string
	ConsumerGroup string
	ConsumerName  string
	MaxLen        int64
	BatchSize     int64
	PollInterval  time.Duration
}

// Stream publishes and consumes shipment events over a redis stream with a
// consumer group, so multiple trackers share the feed without double
// counting.
type Stream struct {
	adapter redis.RedisAdapter
	config  StreamConfig
}

func NewStream(adapter redis.RedisAdapter, config StreamConfig) (*Stream, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("stream name is required")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 64
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 250 * time.Millisecond
	}
	return &Stream{
		adapter: adapter,
		config:  config,
	}, nil
}

// Publish appends the event. Trimming is approximate; the stream is an
// operational feed, not the ledger of record.
func (s *Stream) Publish(ctx context.Context, ev Event) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	id, err := s.adapter.XAdd(s.config.Name, map[string]interface{}{payloadField: string(b)})
	if err != nil {
		return "", err
	}
	if s.config.MaxLen > 0 {
		_ = s.adapter.XTrimApprox(s.config.Name, s.config.MaxLen)
	}
	return id, nil
}

// EnsureGroup creates the consumer group, tolerating the group already
// existing.
func (s *Stream) EnsureGroup() error {
	err := s.adapter.XGroupCreateMkStream(s.config.Name, s.config.ConsumerGroup, "0")
	if err != nil && !isBusyGroup(err) {
		return err
	}
	return nil
}

// ReadBatch returns the next undelivered events for this consumer. An empty
// slice means nothing is pending.
func (s *Stream) ReadBatch(ctx context.Context) ([]ReceivedEvent, error) {
	msgs, err := s.adapter.XReadGroup(s.config.ConsumerGroup, s.config.ConsumerName, s.config.Name, ">", s.config.BatchSize)
	if err != nil {
		return nil, err
	}

	out := make([]ReceivedEvent, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values[payloadField].(string)
		if !ok {
			// malformed entry, ack and drop
			_ = s.adapter.XAck(s.config.Name, s.config.ConsumerGroup, m.ID)
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			_ = s.adapter.XAck(s.config.Name, s.config.ConsumerGroup, m.ID)
			continue
		}
		out = append(out, ReceivedEvent{ID: m.ID, Event: ev})
	}
	return out, nil
}

func (s *Stream) Ack(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.adapter.XAck(s.config.Name, s.config.ConsumerGroup, ids...)
}

func (s *Stream) Len() (int64, error) {
	return s.adapter.XLen(s.config.Name)
}

func (s *Stream) PollInterval() time.Duration {
	return s.config.PollInterval
}

type ReceivedEvent struct {
	ID    string
	Event Event
}

func isBusyGroup(err error) bool {
	return err != nil && len(err.Error()) >= 9 && err.Error()[:9] == "BUSYGROUP"
}
