package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// AirdropRange selects which slice of listings to fetch.
type AirdropRange string

const (
	RangeToday    AirdropRange = "today"
	RangeUpcoming AirdropRange = "upcoming"
	RangeAll      AirdropRange = "all"
)

// GetAirdropsByRange fetches public airdrop listings. The backend returns
// either {"items": [...]} or a bare array depending on version; both are
// accepted.
func (c *Client) GetAirdropsByRange(ctx context.Context, r AirdropRange) ([]model.Airdrop, error) {
	query := url.Values{}
	query.Set("range", string(r))

	body, err := c.doWithRetry(ctx, http.MethodGet, "/airdrops", query)
	if err != nil {
		return nil, fmt.Errorf("get %s airdrops: %w", r, err)
	}

	items, err := decodeAirdropList(body)
	if err != nil {
		return nil, fmt.Errorf("get %s airdrops: %w", r, err)
	}
	return items, nil
}

// GetAllAirdrops fetches every listing, including unpublished ones (admin).
func (c *Client) GetAllAirdrops(ctx context.Context) ([]model.Airdrop, error) {
	var items []model.Airdrop
	if err := c.get(ctx, "/admin/airdrops", nil, &items); err != nil {
		return nil, fmt.Errorf("get all airdrops: %w", err)
	}
	return items, nil
}

// GetDeletedAirdrops fetches soft-deleted listings (admin).
func (c *Client) GetDeletedAirdrops(ctx context.Context) ([]model.Airdrop, error) {
	var items []model.Airdrop
	if err := c.get(ctx, "/admin/airdrops/deleted", nil, &items); err != nil {
		return nil, fmt.Errorf("get deleted airdrops: %w", err)
	}
	return items, nil
}

// CreateAirdrop creates a listing and returns the stored record.
func (c *Client) CreateAirdrop(ctx context.Context, a model.Airdrop) (*model.Airdrop, error) {
	a.ID = ""
	a.Deleted = false

	var created model.Airdrop
	if err := c.send(ctx, http.MethodPost, "/airdrops", a, &created); err != nil {
		return nil, fmt.Errorf("create airdrop: %w", err)
	}
	return &created, nil
}

// UpdateAirdrop updates a listing by ID and returns the stored record.
func (c *Client) UpdateAirdrop(ctx context.Context, id string, a model.Airdrop) (*model.Airdrop, error) {
	var updated model.Airdrop
	if err := c.send(ctx, http.MethodPut, "/airdrops/"+id, a, &updated); err != nil {
		return nil, fmt.Errorf("update airdrop %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteAirdrop deletes a listing by ID.
func (c *Client) DeleteAirdrop(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/airdrops/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete airdrop %s: %w", id, err)
	}
	return nil
}

// decodeAirdropList accepts {"items": [...]} or a bare array.
func decodeAirdropList(body []byte) ([]model.Airdrop, error) {
	var wrapped struct {
		Items []model.Airdrop `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}

	var items []model.Airdrop
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unmarshal airdrop list: %w", err)
	}
	return items, nil
}
