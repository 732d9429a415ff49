package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HTTPUserService struct {
	baseURL string
	client  *http.Client
}

func NewHTTPUserService(baseURL string) *HTTPUserService {
	return &HTTPUserService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPUserService) GetUser(ctx context.Context, userID string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/users/%s", c.baseURL, userID), nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user service call: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var user User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, fmt.Errorf("decode user response: %w", err)
		}
		return &user, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("user service returned %d", resp.StatusCode)
	}
}
