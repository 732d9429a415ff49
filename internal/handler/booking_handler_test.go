package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/dto"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	createFn       func(ctx context.Context, userID, showtimeID string, seats []string) (*models.Booking, error)
	completeFn     func(ctx context.Context, bookingID string, method models.PaymentMethod, details map[string]any) (*models.Booking, error)
	cancelFn       func(ctx context.Context, bookingID, reason string) (*models.Booking, error)
	markRefundedFn func(ctx context.Context, bookingID string) (*models.Booking, error)
	getFn          func(ctx context.Context, id string) (*models.Booking, error)
	listFn         func(ctx context.Context, userID string) ([]models.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, userID, showtimeID string, seats []string) (*models.Booking, error) {
	return m.createFn(ctx, userID, showtimeID, seats)
}

func (m *mockBookingService) CompletePayment(ctx context.Context, bookingID string, method models.PaymentMethod, details map[string]any) (*models.Booking, error) {
	return m.completeFn(ctx, bookingID, method, details)
}

func (m *mockBookingService) CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	return m.cancelFn(ctx, bookingID, reason)
}

func (m *mockBookingService) MarkRefunded(ctx context.Context, bookingID string) (*models.Booking, error) {
	return m.markRefundedFn(ctx, bookingID)
}

func (m *mockBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return m.getFn(ctx, id)
}

func (m *mockBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return m.listFn(ctx, userID)
}

func setupEcho(svc service.BookingService) *echo.Echo {
	e := echo.New()
	NewBookingHandler(svc).RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID:          "b1",
		UserID:      "u1",
		ShowtimeID:  "r1",
		Seats:       []string{"A1", "A2"},
		TotalAmount: 31.98,
		Status:      models.StatusPendingPayment,
	}
}

func TestCreateBooking_Created(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(_ context.Context, userID, showtimeID string, seats []string) (*models.Booking, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, "r1", showtimeID)
			assert.Equal(t, []string{"A1", "A2"}, seats)
			return sampleBooking(), nil
		},
	}
	e := setupEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/bookings",
		`{"user_id":"u1","showtime_id":"r1","seats":["A1","A2"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var result dto.BookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.Booking)
	assert.Equal(t, "b1", result.Booking.ID)
	assert.Equal(t, string(models.StatusPendingPayment), result.Booking.Status)
}

func TestCreateBooking_MissingFields(t *testing.T) {
	e := setupEcho(&mockBookingService{})

	rec := doJSON(e, http.MethodPost, "/api/v1/bookings", `{"user_id":"u1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_SeatsUnavailable(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(_ context.Context, _, _ string, _ []string) (*models.Booking, error) {
			return nil, service.ErrSeatsUnavailable
		},
	}
	e := setupEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/bookings",
		`{"user_id":"u1","showtime_id":"r1","seats":["A1"]}`)

	require.Equal(t, http.StatusConflict, rec.Code)

	var result dto.BookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
}

func TestCompletePayment_Confirmed(t *testing.T) {
	svc := &mockBookingService{
		completeFn: func(_ context.Context, bookingID string, method models.PaymentMethod, _ map[string]any) (*models.Booking, error) {
			assert.Equal(t, "b1", bookingID)
			assert.Equal(t, models.MethodCreditCard, method)
			b := sampleBooking()
			b.Status = models.StatusConfirmed
			txID := "tx-1"
			b.PaymentTransactionID = &txID
			return b, nil
		},
	}
	e := setupEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/bookings/b1/payment",
		`{"payment_method":"credit_card","payment_details":{"card_number":"4111111111111111"}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result dto.BookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, string(models.StatusConfirmed), result.Booking.Status)
}

func TestCompletePayment_DefaultsMethod(t *testing.T) {
	svc := &mockBookingService{
		completeFn: func(_ context.Context, _ string, method models.PaymentMethod, _ map[string]any) (*models.Booking, error) {
			assert.Equal(t, models.MethodCreditCard, method)
			b := sampleBooking()
			b.Status = models.StatusConfirmed
			return b, nil
		},
	}
	e := setupEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/bookings/b1/payment", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompletePayment_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"declined", service.ErrPaymentDeclined, http.StatusPaymentRequired},
		{"expired", service.ErrLockExpired, http.StatusGone},
		{"not found", service.ErrBookingNotFound, http.StatusNotFound},
		{"wrong state", service.ErrInvalidState, http.StatusConflict},
		{"compensation", service.ErrCompensationRequired, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockBookingService{
				completeFn: func(_ context.Context, _ string, _ models.PaymentMethod, _ map[string]any) (*models.Booking, error) {
					return nil, tc.err
				},
			}
			e := setupEcho(svc)

			rec := doJSON(e, http.MethodPost, "/api/v1/bookings/b1/payment", `{}`)

			require.Equal(t, tc.code, rec.Code)

			var result dto.BookingResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestCancelBooking_OK(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(_ context.Context, bookingID, reason string) (*models.Booking, error) {
			assert.Equal(t, "b1", bookingID)
			assert.Equal(t, "plans changed", reason)
			b := sampleBooking()
			b.Status = models.StatusCancelled
			return b, nil
		},
	}
	e := setupEcho(svc)

	rec := doJSON(e, http.MethodPost, "/api/v1/bookings/b1/cancel", `{"reason":"plans changed"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBooking_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(_ context.Context, _ string) (*models.Booking, error) {
			return nil, service.ErrBookingNotFound
		},
	}
	e := setupEcho(svc)

	rec := doJSON(e, http.MethodGet, "/api/v1/bookings/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUserBookings(t *testing.T) {
	svc := &mockBookingService{
		listFn: func(_ context.Context, userID string) ([]models.Booking, error) {
			assert.Equal(t, "u1", userID)
			return []models.Booking{*sampleBooking()}, nil
		},
	}
	e := setupEcho(svc)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/u1/bookings", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "b1", resp[0].ID)
}
