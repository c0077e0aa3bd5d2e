// FILE: internal/service/audit_service.go
package service

import (
	"context"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/logger"
	"github.com/CustomGPTer/RAMS-Generator/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships events to an external bus (NATS in production).
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IAuditService interface {
	Consume(ctx context.Context) error
}

type auditService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewAuditService consumes lifecycle events from topicName. forwarder may be
// nil, in which case events are only logged.
func NewAuditService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	logger logger.ILogger,
) IAuditService {
	return &auditService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		logger:     logger,
	}
}

func (s *auditService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *auditService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		s.logger.Error("AUDIT", "Failed to decode lifecycle event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	s.logger.Info("AUDIT", event.EventType(), map[string]interface{}{
		"message_id":  msg.UUID,
		"occurred_at": event.Timestamp(),
		"payload":     event.Payload(),
	})

	if s.forwarder != nil {
		if err := s.forwarder.Publish(ctx, event); err != nil {
			// Forwarding is best effort; the local audit line is already written
			s.logger.Warn("AUDIT", "Failed to forward event", map[string]interface{}{
				"event_type": event.EventType(),
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}
