package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/events"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/idempotency"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/notifier"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/repository"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/datatypes"
)

// handlerFunc renders the notification for one event type. A nil message with
// a nil error means the event needs no notification.
type handlerFunc func(env *events.Envelope) (*notifier.Message, error)

// NotificationConsumer turns at-least-once deliveries into at-most-once
// notifications: every event id passes through the idempotency store before
// a handler runs, and every attempt lands in the notification log.
type NotificationConsumer struct {
	store    idempotency.Store
	logs     repository.NotificationLogRepository
	notifier notifier.Notifier
	handlers map[string]handlerFunc
}

func NewNotificationConsumer(store idempotency.Store, logs repository.NotificationLogRepository, n notifier.Notifier) *NotificationConsumer {
	c := &NotificationConsumer{
		store:    store,
		logs:     logs,
		notifier: n,
	}
	c.handlers = map[string]handlerFunc{
		events.TypeBookingConfirmed: c.bookingConfirmed,
		events.TypeBookingCancelled: c.bookingCancelled,
		events.TypeBookingRefunded:  c.bookingRefunded,
		events.TypePaymentSuccess:   c.paymentSuccess,
		events.TypePaymentFailed:    c.paymentFailed,
		events.TypePaymentRefund:    c.paymentRefund,
	}
	return c
}

// Run drains deliveries until the context is cancelled or the channel closes.
func (c *NotificationConsumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				log.Println("[Consumer] delivery channel closed, stopping")
				return
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *NotificationConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var env events.Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil || env.EventID == "" {
		// Garbage never gets retried.
		log.Printf("[Consumer] dropping malformed message on %s: %v", d.RoutingKey, err)
		_ = d.Ack(false)
		return
	}

	claimed, err := c.store.Claim(ctx, env.EventID)
	if err != nil {
		log.Printf("[Consumer] idempotency check failed for %s: %v", env.EventID, err)
		_ = d.Nack(false, true)
		return
	}
	if !claimed {
		log.Printf("[Consumer] event %s already processed, skipping", env.EventID)
		_ = d.Ack(false)
		return
	}

	handler, ok := c.handlers[env.EventType]
	if !ok {
		// Unknown types are handled forward-compatibly as a no-op.
		log.Printf("[Consumer] unknown event type %s, acknowledging", env.EventType)
		_ = c.store.MarkProcessed(ctx, env.EventID)
		_ = d.Ack(false)
		return
	}

	msg, err := handler(&env)
	if err != nil {
		c.fail(ctx, d, &env, nil, err)
		return
	}
	if msg == nil {
		_ = c.store.MarkProcessed(ctx, env.EventID)
		_ = d.Ack(false)
		return
	}

	if err := c.notifier.Send(ctx, *msg); err != nil {
		c.fail(ctx, d, &env, msg, err)
		return
	}

	if err := c.store.MarkProcessed(ctx, env.EventID); err != nil {
		log.Printf("[Consumer] failed to mark %s processed: %v", env.EventID, err)
	}
	if err := c.audit(ctx, d, &env, msg, "sent"); err != nil {
		// Notification already went out; losing the audit row is the lesser
		// failure versus re-sending on redelivery.
		log.Printf("[Consumer] failed to log notification for %s: %v", env.EventID, err)
	}
	_ = d.Ack(false)
	log.Printf("[Consumer] processed %s (%s)", env.EventID, env.EventType)
}

func (c *NotificationConsumer) fail(ctx context.Context, d amqp.Delivery, env *events.Envelope, msg *notifier.Message, cause error) {
	log.Printf("[Consumer] failed to process %s (%s): %v", env.EventID, env.EventType, cause)
	if msg != nil {
		if err := c.audit(ctx, d, env, msg, "failed"); err != nil {
			log.Printf("[Consumer] failed to log failed attempt for %s: %v", env.EventID, err)
		}
	}
	_ = c.store.MarkFailed(ctx, env.EventID)
	_ = d.Nack(false, true)
}

func (c *NotificationConsumer) audit(ctx context.Context, d amqp.Delivery, env *events.Envelope, msg *notifier.Message, status string) error {
	entry := &models.NotificationLog{
		ID:           uuid.NewString(),
		EventID:      env.EventID,
		Channel:      msg.Channel,
		Recipient:    msg.Recipient,
		Subject:      msg.Subject,
		Status:       status,
		EventPayload: datatypes.JSON(d.Body),
		CreatedAt:    time.Now().UTC(),
	}
	if status == "sent" {
		now := time.Now().UTC()
		entry.SentAt = &now
	}
	return c.logs.Create(ctx, entry)
}

// recipient prefers the email carried on the event; the original system falls
// back to a synthetic address derived from the user id.
func recipient(env *events.Envelope) string {
	if email := env.String("user_email"); email != "" {
		return email
	}
	return fmt.Sprintf("user_%s@example.com", env.UserID)
}

func (c *NotificationConsumer) bookingConfirmed(env *events.Envelope) (*notifier.Message, error) {
	body := fmt.Sprintf(
		"Your booking %s is confirmed!\nMovie: %s\nShowtime: %s\nCinema: %s\nSeats: %s\nTotal: %.2f\nTransaction: %s",
		env.BookingID,
		env.String("movie_title"),
		env.String("showtime"),
		env.String("cinema_name"),
		strings.Join(env.Strings("seats"), ", "),
		env.Float("total_amount"),
		env.String("transaction_id"),
	)
	return &notifier.Message{
		Channel:   notifier.ChannelEmail,
		Recipient: recipient(env),
		Subject:   "Booking Confirmed - Movie Tickets",
		Body:      body,
	}, nil
}

func (c *NotificationConsumer) bookingCancelled(env *events.Envelope) (*notifier.Message, error) {
	return &notifier.Message{
		Channel:   notifier.ChannelEmail,
		Recipient: recipient(env),
		Subject:   "Booking Cancelled",
		Body:      fmt.Sprintf("Your booking %s was cancelled. Reason: %s", env.BookingID, env.String("reason")),
	}, nil
}

func (c *NotificationConsumer) bookingRefunded(env *events.Envelope) (*notifier.Message, error) {
	return &notifier.Message{
		Channel:   notifier.ChannelEmail,
		Recipient: recipient(env),
		Subject:   "Refund Processed",
		Body: fmt.Sprintf("A refund for booking %s is being processed.\nTransaction: %s\nReason: %s",
			env.BookingID, env.String("transaction_id"), env.String("refund_reason")),
	}, nil
}

func (c *NotificationConsumer) paymentSuccess(env *events.Envelope) (*notifier.Message, error) {
	return &notifier.Message{
		Channel:   notifier.ChannelEmail,
		Recipient: recipient(env),
		Subject:   "Payment Received",
		Body: fmt.Sprintf("Payment of %.2f via %s for booking %s succeeded.\nTransaction: %s",
			env.Float("amount"), env.String("payment_method"), env.BookingID, env.String("transaction_id")),
	}, nil
}

func (c *NotificationConsumer) paymentFailed(env *events.Envelope) (*notifier.Message, error) {
	return &notifier.Message{
		Channel:   notifier.ChannelEmail,
		Recipient: recipient(env),
		Subject:   "Payment Failed",
		Body: fmt.Sprintf("Payment for booking %s failed: %s",
			env.BookingID, env.String("failure_reason")),
	}, nil
}

func (c *NotificationConsumer) paymentRefund(env *events.Envelope) (*notifier.Message, error) {
	return &notifier.Message{
		Channel:   notifier.ChannelEmail,
		Recipient: recipient(env),
		Subject:   "Refund Issued",
		Body: fmt.Sprintf("A refund of %.2f was issued for booking %s.\nRefund transaction: %s",
			env.Float("refund_amount"), env.BookingID, env.String("refund_transaction_id")),
	}, nil
}
