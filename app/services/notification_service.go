package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/amirphl/collab-market/models"
	"github.com/segmentio/kafka-go"
)

// NotificationPublisher relays stored notifications to the event bus
type NotificationPublisher interface {
	Publish(ctx context.Context, n *models.Notification) error
	Close() error
}

// NotificationEvent is the wire format of a relayed notification
type NotificationEvent struct {
	ID            string                  `json:"id"`
	Type          models.NotificationType `json:"type"`
	RecipientType models.RecipientType    `json:"recipient_type"`
	RecipientID   uint                    `json:"recipient_id"`
	CampaignID    *uint                   `json:"campaign_id,omitempty"`
	Payload       json.RawMessage         `json:"payload,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// NewNotificationEvent builds the event for a notification row
func NewNotificationEvent(n *models.Notification) NotificationEvent {
	return NotificationEvent{
		ID:            n.UUID.String(),
		Type:          n.Type,
		RecipientType: n.RecipientType,
		RecipientID:   n.RecipientID,
		CampaignID:    n.CampaignID,
		Payload:       n.Payload,
		CreatedAt:     n.CreatedAt.UTC(),
	}
}

// partitionKey keeps every event of one recipient on one partition
func partitionKey(n *models.Notification) string {
	return fmt.Sprintf("%s:%d", n.RecipientType, n.RecipientID)
}

// KafkaNotificationPublisher writes notification events to a Kafka topic
type KafkaNotificationPublisher struct {
	writer       *kafka.Writer
	topic        string
	writeTimeout time.Duration
}

// NewKafkaNotificationPublisher creates a publisher for the given brokers and topic
func NewKafkaNotificationPublisher(brokers []string, topic string, writeTimeout time.Duration) (*KafkaNotificationPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &KafkaNotificationPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
			WriteTimeout: writeTimeout,
		},
		topic:        topic,
		writeTimeout: writeTimeout,
	}, nil
}

// Publish writes one event and waits for every in-sync replica
func (p *KafkaNotificationPublisher) Publish(ctx context.Context, n *models.Notification) error {
	value, err := json.Marshal(NewNotificationEvent(n))
	if err != nil {
		return fmt.Errorf("failed to encode notification %s: %w", n.UUID, err)
	}

	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(partitionKey(n)),
		Value: value,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(n.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification %s to %s: %w", n.UUID, p.topic, err)
	}
	return nil
}

func (p *KafkaNotificationPublisher) Close() error {
	return p.writer.Close()
}

// LogNotificationPublisher writes events as JSON lines. Used when no broker is configured.
type LogNotificationPublisher struct {
	logger *log.Logger
}

func NewLogNotificationPublisher(w io.Writer) *LogNotificationPublisher {
	return &LogNotificationPublisher{logger: log.New(w, "notification ", log.LstdFlags|log.LUTC)}
}

func (p *LogNotificationPublisher) Publish(ctx context.Context, n *models.Notification) error {
	value, err := json.Marshal(NewNotificationEvent(n))
	if err != nil {
		return fmt.Errorf("failed to encode notification %s: %w", n.UUID, err)
	}
	p.logger.Printf("key=%s event=%s", partitionKey(n), value)
	return nil
}

func (p *LogNotificationPublisher) Close() error {
	return nil
}
