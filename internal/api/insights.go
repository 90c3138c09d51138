package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// GetAlphaInsights fetches all research articles.
func (c *Client) GetAlphaInsights(ctx context.Context) ([]model.AlphaInsight, error) {
	var insights []model.AlphaInsight
	if err := c.get(ctx, "/alpha-insights", nil, &insights); err != nil {
		return nil, fmt.Errorf("get alpha insights: %w", err)
	}
	return insights, nil
}

// CreateAlphaInsight creates an article and returns the stored record.
func (c *Client) CreateAlphaInsight(ctx context.Context, in model.AlphaInsight) (*model.AlphaInsight, error) {
	in.ID = ""

	var created model.AlphaInsight
	if err := c.send(ctx, http.MethodPost, "/alpha-insights", in, &created); err != nil {
		return nil, fmt.Errorf("create alpha insight: %w", err)
	}
	return &created, nil
}

// UpdateAlphaInsight updates an article by ID.
func (c *Client) UpdateAlphaInsight(ctx context.Context, id string, in model.AlphaInsight) (*model.AlphaInsight, error) {
	var updated model.AlphaInsight
	if err := c.send(ctx, http.MethodPut, "/alpha-insights/"+id, in, &updated); err != nil {
		return nil, fmt.Errorf("update alpha insight %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteAlphaInsight deletes an article by ID.
func (c *Client) DeleteAlphaInsight(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/alpha-insights/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete alpha insight %s: %w", id, err)
	}
	return nil
}
