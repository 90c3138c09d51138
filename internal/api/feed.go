package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// feedResponse is the trade feed envelope. A missing or null "data" field is
// an empty snapshot, not an error.
type feedResponse struct {
	Data []model.TradeTick `json:"data"`
}

// GetTrades fetches one trade snapshot from an absolute feed URL. Unlike the
// admin reads there is no client-side retry here; the feed poller owns the
// retry schedule, and a superseded request must be cancellable through ctx.
func (c *Client) GetTrades(ctx context.Context, feedURL string) ([]model.TradeTick, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var parsed feedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}

	return parsed.Data, nil
}
