package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"gatherly-go/internal/config"
	"gatherly-go/internal/journal"
	"gatherly-go/internal/logger"
)

// Event is the message shape published for registration lifecycle changes.
type Event struct {
	Type           string    `json:"type"`
	AttemptID      string    `json:"attemptId"`
	EventID        string    `json:"eventId"`
	RegistrationID string    `json:"registrationId,omitempty"`
	OrderID        string    `json:"orderId,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Producer publishes registration lifecycle events. In mock mode (or when
// streaming is disabled) publishes are logged and dropped so the gateway can
// run without a broker.
type Producer struct {
	writer *kafka.Writer
	topics config.TopicConfig
	logger *logger.Logger
	mock   bool
}

// NewProducer builds a producer from the stream config.
func NewProducer(cfg config.StreamConfig, log *logger.Logger) *Producer {
	p := &Producer{
		topics: cfg.Topics,
		logger: log,
		mock:   !cfg.Enabled || cfg.MockMode,
	}
	if !p.mock {
		p.writer = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Balancer: &kafka.LeastBytes{},
		}
	}
	return p
}

func (p *Producer) publish(ctx context.Context, topic string, event Event) error {
	event.Timestamp = time.Now()

	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.mock {
		if p.logger != nil {
			p.logger.LogStream("MOCK", topic, string(msgBytes))
		}
		return nil
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.AttemptID),
		Value: msgBytes,
	})
	if err != nil {
		if p.logger != nil {
			p.logger.Error("STREAM", fmt.Sprintf("Failed to publish to %s: %v", topic, err))
		}
		return err
	}

	if p.logger != nil {
		p.logger.LogStream("PUBLISH", topic, event.AttemptID)
	}
	return nil
}

// PublishPending streams a pending-order event.
func (p *Producer) PublishPending(ctx context.Context, attempt journal.Attempt) error {
	return p.publish(ctx, p.topics.RegistrationPending, Event{
		Type:           "registration.pending",
		AttemptID:      attempt.AttemptID,
		EventID:        attempt.EventID,
		RegistrationID: attempt.RegistrationID,
		OrderID:        attempt.OrderID,
	})
}

// PublishCompleted streams a completed-registration event.
func (p *Producer) PublishCompleted(ctx context.Context, attempt journal.Attempt) error {
	return p.publish(ctx, p.topics.RegistrationCompleted, Event{
		Type:           "registration.completed",
		AttemptID:      attempt.AttemptID,
		EventID:        attempt.EventID,
		RegistrationID: attempt.RegistrationID,
		OrderID:        attempt.OrderID,
	})
}

// PublishFailed streams a failed-attempt event.
func (p *Producer) PublishFailed(ctx context.Context, attempt journal.Attempt, reason string) error {
	return p.publish(ctx, p.topics.RegistrationFailed, Event{
		Type:      "registration.failed",
		AttemptID: attempt.AttemptID,
		EventID:   attempt.EventID,
		OrderID:   attempt.OrderID,
		Reason:    reason,
	})
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
