package handler

import (
	"errors"
	"net/http"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/dto"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	bookings := e.Group("/api/v1/bookings")
	bookings.POST("", h.CreateBooking)
	bookings.GET("/:id", h.GetBooking)
	bookings.POST("/:id/payment", h.CompletePayment)
	bookings.POST("/:id/cancel", h.CancelBooking)

	e.GET("/api/v1/users/:id/bookings", h.ListUserBookings)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.ShowtimeID == "" || len(req.Seats) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id, showtime_id and seats are required")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), req.UserID, req.ShowtimeID, req.Seats)
	if err != nil {
		return c.JSON(bookingErrorStatus(err), dto.BookingResult{Success: false, Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, dto.BookingResult{
		Success: true,
		Booking: dto.ToBookingResponse(booking),
		Message: "Booking created successfully. Please complete payment before the seat lock expires.",
	})
}

func (h *BookingHandler) CompletePayment(c echo.Context) error {
	bookingID := c.Param("id")

	var req dto.CompletePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = string(models.MethodCreditCard)
	}

	booking, err := h.svc.CompletePayment(c.Request().Context(), bookingID, models.PaymentMethod(req.PaymentMethod), req.PaymentDetails)
	if err != nil {
		return c.JSON(bookingErrorStatus(err), dto.BookingResult{Success: false, Message: err.Error()})
	}

	return c.JSON(http.StatusOK, dto.BookingResult{
		Success: true,
		Booking: dto.ToBookingResponse(booking),
		Message: "Booking confirmed successfully! Check your email for confirmation details.",
	})
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID := c.Param("id")

	var req dto.CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.svc.CancelBooking(c.Request().Context(), bookingID, req.Reason)
	if err != nil {
		return c.JSON(bookingErrorStatus(err), dto.BookingResult{Success: false, Message: err.Error()})
	}

	return c.JSON(http.StatusOK, dto.BookingResult{
		Success: true,
		Booking: dto.ToBookingResponse(booking),
		Message: "Booking cancelled.",
	})
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	booking, err := h.svc.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListUserBookings(c echo.Context) error {
	bookings, err := h.svc.ListUserBookings(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]*dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrShowtimeNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSeatsUnavailable),
		errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, service.ErrLockExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrCompensationRequired):
		// Money captured without inventory: surfaced loudly, alertable.
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}
