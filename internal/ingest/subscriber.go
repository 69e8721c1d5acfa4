package ingest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/sensor-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensor-core/internal/sensor"
)

// handleTimeout bounds the database work for a single message.
const handleTimeout = 10 * time.Second

// Broker is the subset of *mqtt.Client the subscriber needs.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Logger defines the logging interface used by the Subscriber.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Stats counts messages handled since the subscriber started.
type Stats struct {
	Received  uint64 `json:"received"`
	Stored    uint64 `json:"stored"`
	Malformed uint64 `json:"malformed"`
	Failed    uint64 `json:"failed"`
}

// Subscriber consumes sensor readings from MQTT.
type Subscriber struct {
	broker Broker
	topics mqtt.Topics
	store  sensor.Ingester
	qos    byte
	logger Logger

	received  atomic.Uint64
	stored    atomic.Uint64
	malformed atomic.Uint64
	failed    atomic.Uint64
}

// NewSubscriber creates a subscriber for the readings topics under topics.Prefix.
func NewSubscriber(broker Broker, topics mqtt.Topics, store sensor.Ingester, qos byte) *Subscriber {
	return &Subscriber{
		broker: broker,
		topics: topics,
		store:  store,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the subscriber.
func (s *Subscriber) SetLogger(logger Logger) {
	s.logger = logger
}

// Start subscribes to every sensor's readings topic.
func (s *Subscriber) Start() error {
	if err := s.broker.Subscribe(s.topics.AllSensorReadings(), s.qos, s.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to sensor readings: %w", err)
	}
	return nil
}

// Stop removes the subscription.
func (s *Subscriber) Stop() error {
	return s.broker.Unsubscribe(s.topics.AllSensorReadings())
}

// Stats returns the message counters.
func (s *Subscriber) Stats() Stats {
	return Stats{
		Received:  s.received.Load(),
		Stored:    s.stored.Load(),
		Malformed: s.malformed.Load(),
		Failed:    s.failed.Load(),
	}
}

// HandleMessage stores one MQTT reading. It is the subscription callback.
//
// Returns:
//   - error: sensor.ErrMalformedRecord for unusable topics or payloads,
//     otherwise the ingestion error (logged by the MQTT client)
func (s *Subscriber) HandleMessage(topic string, payload []byte) error {
	s.received.Add(1)

	id, ok := s.topics.SensorIDFromTopic(topic)
	if !ok {
		s.malformed.Add(1)
		return fmt.Errorf("%w: unexpected topic %q", sensor.ErrMalformedRecord, topic)
	}

	reading, err := sensor.ParseReading(payload)
	if err != nil {
		s.malformed.Add(1)
		return fmt.Errorf("sensor %s: %w", id, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := s.store.Ingest(ctx, id, reading); err != nil {
		s.failed.Add(1)
		return fmt.Errorf("storing reading for %s: %w", id, err)
	}

	s.stored.Add(1)
	s.logger.Debug("mqtt reading stored", "sensor_id", id)
	return nil
}
