package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Known event types. Routing key on the broker is the event type itself.
const (
	TypeBookingPendingPayment = "booking.pending_payment"
	TypeBookingConfirmed      = "booking.confirmed"
	TypeBookingCancelled      = "booking.cancelled"
	TypeBookingRefunded       = "booking.refunded"

	TypePaymentSuccess = "payment.success"
	TypePaymentFailed  = "payment.failed"
	TypePaymentRefund  = "payment.refund"

	TypeSeatsReleased = "seats.released"
)

// Publisher emits domain events. The AMQP implementation lives in
// internal/publisher; tests and offline runs substitute their own.
type Publisher interface {
	Publish(ctx context.Context, eventType, bookingID, userID string, data map[string]any) error
}

// Envelope is the wire shape of every event. Type-specific fields in Data are
// flattened alongside the header on the wire:
//
//	{"event_id": ..., "event_type": ..., "booking_id": ..., "user_id": ...,
//	 "timestamp": ..., <type-specific fields>}
type Envelope struct {
	EventID   string
	EventType string
	BookingID string
	UserID    string
	Timestamp time.Time
	Data      map[string]any
}

func NewEnvelope(eventType, bookingID, userID string, data map[string]any) Envelope {
	return Envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		BookingID: bookingID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Data)+5)
	for k, v := range e.Data {
		out[k] = v
	}
	out["event_id"] = e.EventID
	out["event_type"] = e.EventType
	out["booking_id"] = e.BookingID
	out["user_id"] = e.UserID
	out["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	return json.Marshal(out)
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	e.EventID = popString(raw, "event_id")
	e.EventType = popString(raw, "event_type")
	e.BookingID = popString(raw, "booking_id")
	e.UserID = popString(raw, "user_id")

	if ts := popString(raw, "timestamp"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
	}

	e.Data = raw
	return nil
}

// String returns the type-specific field as a string, or "" if absent.
func (e Envelope) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Float returns the type-specific field as a float64, or 0 if absent.
func (e Envelope) Float(key string) float64 {
	f, _ := e.Data[key].(float64)
	return f
}

// Strings returns the type-specific field as a string slice.
func (e Envelope) Strings(key string) []string {
	raw, _ := e.Data[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func popString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	delete(m, key)
	return s
}
