package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HTTPCinemaService struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCinemaService(baseURL string) *HTTPCinemaService {
	return &HTTPCinemaService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPCinemaService) GetShowtime(ctx context.Context, showtimeID string) (*ShowtimeDetails, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/showtimes/%s", showtimeID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var details ShowtimeDetails
		if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
			return nil, fmt.Errorf("decode showtime response: %w", err)
		}
		return &details, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("cinema service returned %d", resp.StatusCode)
	}
}

func (c *HTTPCinemaService) LockSeats(ctx context.Context, showtimeID string, seats []string, bookingID string, ttl time.Duration) (*LockResult, error) {
	body := map[string]any{
		"showtime_id":           showtimeID,
		"seat_numbers":          seats,
		"booking_id":            bookingID,
		"lock_duration_seconds": int(ttl.Seconds()),
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/seats/lock", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Success   bool      `json:"success"`
		LockID    string    `json:"lock_id"`
		ExpiresAt time.Time `json:"expires_at"`
		Message   string    `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode lock response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrSeatsUnavailable, result.Message)
	}
	return &LockResult{LockID: result.LockID, ExpiresAt: result.ExpiresAt}, nil
}

func (c *HTTPCinemaService) ConfirmSeats(ctx context.Context, lockID, bookingID, userID string) error {
	body := map[string]any{
		"lock_id":    lockID,
		"booking_id": bookingID,
		"user_id":    userID,
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/seats/confirm", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode confirm response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("seat confirmation declined: %s", result.Message)
	}
	return nil
}

func (c *HTTPCinemaService) ReleaseLock(ctx context.Context, lockID string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/seats/release", map[string]any{"lock_id": lockID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("release lock returned %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPCinemaService) do(ctx context.Context, method, path string, body map[string]any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build cinema request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cinema service call: %w", err)
	}
	return resp, nil
}
