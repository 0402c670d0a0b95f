package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
)

// Audit event types published on resource mutations.
const (
	TypeFileReplaced   = "file.replaced"
	TypeFileDeleted    = "file.deleted"
	TypeMembersChanged = "members.changed"
)

// Event is the audit payload published on resource mutations.
type Event struct {
	Type       string `json:"type"`
	Resource   string `json:"resource"` // course or presentation-group
	ResourceID string `json:"resourceId"`
	Actor      string `json:"actor"`
	Timestamp  int64  `json:"timestamp"`
}

// Notifier abstracts the event publisher so services and tests can swap in
// a mock.
type Notifier interface {
	Publish(event Event) error
	Close()
}

type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
}

// NewEventPublisher initializes the Pulsar client and producer.
func NewEventPublisher(pulsarURL, topic string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	return &EventPublisher{
		client:   client,
		producer: producer,
	}, nil
}

// Publish publishes an audit event to Pulsar.
func (p *EventPublisher) Publish(event Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UTC().Unix()
	}

	// Serialize the payload as JSON
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not serialize event payload: %w", err)
	}

	// Publish the message to Pulsar
	_, err = p.producer.Send(context.Background(), &pulsar.ProducerMessage{
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}

	return nil
}

// Close cleans up the Pulsar producer and client.
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
}
