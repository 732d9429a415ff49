package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/events"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/pkg/rabbitmq"
)

// EventPublisher stamps every domain event with a fresh envelope and hands it
// to the broker with the event type as routing key.
type EventPublisher struct {
	mq *rabbitmq.Publisher
}

func New(mq *rabbitmq.Publisher) *EventPublisher {
	return &EventPublisher{mq: mq}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType, bookingID, userID string, data map[string]any) error {
	env := events.NewEnvelope(eventType, bookingID, userID, data)

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", eventType, err)
	}

	if err := p.mq.Publish(ctx, eventType, body); err != nil {
		return fmt.Errorf("publish event %s: %w", eventType, err)
	}

	log.Printf("[Events] published %s for booking %s (event_id=%s)", eventType, bookingID, env.EventID)
	return nil
}
