package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/dto"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/payment"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	processor *payment.Processor
	bookings  service.BookingService
}

func NewPaymentHandler(processor *payment.Processor, bookings service.BookingService) *PaymentHandler {
	return &PaymentHandler{processor: processor, bookings: bookings}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	payments := e.Group("/api/v1/payments")
	payments.GET("/:transaction_id", h.GetTransaction)
	payments.GET("/booking/:booking_id", h.ListBookingTransactions)
	payments.POST("/:transaction_id/refund", h.Refund)
}

func (h *PaymentHandler) GetTransaction(c echo.Context) error {
	tx, err := h.processor.GetTransaction(c.Request().Context(), c.Param("transaction_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "transaction not found")
	}
	return c.JSON(http.StatusOK, tx)
}

func (h *PaymentHandler) ListBookingTransactions(c echo.Context) error {
	txs, err := h.processor.ListBookingTransactions(c.Request().Context(), c.Param("booking_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, txs)
}

func (h *PaymentHandler) Refund(c echo.Context) error {
	transactionID := c.Param("transaction_id")

	var req dto.RefundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	result, err := h.processor.Refund(ctx, transactionID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrTransactionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, payment.ErrNotRefundable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	// Close the saga loop for compensation refunds; a booking that never
	// entered refund_pending just skips this.
	tx, txErr := h.processor.GetTransaction(ctx, transactionID)
	if txErr == nil {
		if _, err := h.bookings.MarkRefunded(ctx, tx.BookingID); err != nil && !errors.Is(err, service.ErrInvalidState) {
			log.Printf("[Payment] could not mark booking %s refunded: %v", tx.BookingID, err)
		}
	}

	return c.JSON(http.StatusOK, dto.RefundResponse{
		Success:             true,
		RefundTransactionID: result.RefundTransactionID,
		Message:             "Refund processed successfully",
	})
}
