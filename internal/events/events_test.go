package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_MarshalFlattensData(t *testing.T) {
	env := Envelope{
		EventID:   "evt-1",
		EventType: TypeBookingConfirmed,
		BookingID: "b1",
		UserID:    "u1",
		Timestamp: time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
		Data: map[string]any{
			"total_amount": 31.98,
			"seats":        []string{"A1", "A2"},
		},
	}

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	assert.Equal(t, "evt-1", wire["event_id"])
	assert.Equal(t, TypeBookingConfirmed, wire["event_type"])
	assert.Equal(t, "b1", wire["booking_id"])
	assert.Equal(t, "u1", wire["user_id"])
	assert.Equal(t, 31.98, wire["total_amount"])
	assert.NotContains(t, wire, "data", "type-specific fields sit alongside the header, not nested")
}

func TestEnvelope_RoundTrip(t *testing.T) {
	original := NewEnvelope(TypePaymentSuccess, "b1", "u1", map[string]any{
		"transaction_id": "tx-1",
		"amount":         31.98,
	})

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, original.EventID, decoded.EventID)
	assert.Equal(t, original.EventType, decoded.EventType)
	assert.Equal(t, original.BookingID, decoded.BookingID)
	assert.Equal(t, original.UserID, decoded.UserID)
	assert.WithinDuration(t, original.Timestamp, decoded.Timestamp, time.Millisecond)
	assert.Equal(t, "tx-1", decoded.String("transaction_id"))
	assert.Equal(t, 31.98, decoded.Float("amount"))
	assert.NotContains(t, decoded.Data, "event_id", "header fields are stripped out of Data")
}

func TestEnvelope_Accessors(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{
		"event_id": "evt-1",
		"event_type": "booking.confirmed",
		"booking_id": "b1",
		"user_id": "u1",
		"timestamp": "2026-03-14T19:30:00Z",
		"seats": ["A1", "A2"],
		"total_amount": 31.98,
		"movie_title": "Interstellar"
	}`), &env))

	assert.Equal(t, []string{"A1", "A2"}, env.Strings("seats"))
	assert.Equal(t, 31.98, env.Float("total_amount"))
	assert.Equal(t, "Interstellar", env.String("movie_title"))

	assert.Empty(t, env.String("missing"))
	assert.Zero(t, env.Float("missing"))
	assert.Empty(t, env.Strings("missing"))
}

func TestNewEnvelope_AssignsIDAndTimestamp(t *testing.T) {
	a := NewEnvelope(TypeBookingCancelled, "b1", "u1", nil)
	b := NewEnvelope(TypeBookingCancelled, "b1", "u1", nil)

	assert.NotEmpty(t, a.EventID)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.WithinDuration(t, time.Now().UTC(), a.Timestamp, 2*time.Second)
}
