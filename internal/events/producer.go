package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicUser     = "user_events"
	TopicFeedback = "feedback_events"
	TopicProduct  = "product_events"
)

// Event describes a completed user action. Zero fields are omitted.
type Event struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id,omitempty"`
	FeedbackID uint      `json:"feedback_id,omitempty"`
	ProductID  uint      `json:"product_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	At         time.Time `json:"at"`
}

// Key partitions events by the entity they are about.
func (e Event) Key() string {
	switch {
	case e.FeedbackID != 0:
		return "feedback-" + strconv.FormatUint(uint64(e.FeedbackID), 10)
	case e.ProductID != 0:
		return "product-" + strconv.FormatUint(uint64(e.ProductID), 10)
	default:
		return "user-" + strconv.FormatUint(uint64(e.UserID), 10)
	}
}

type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers")
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

func message(topic string, ev Event) (kafka.Message, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	return kafka.Message{Topic: topic, Key: []byte(ev.Key()), Value: data}, nil
}

func (p *Producer) Publish(ctx context.Context, topic string, ev Event) error {
	msg, err := message(topic, ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Nop drops every event; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
func (Nop) Close() error                                 { return nil }
