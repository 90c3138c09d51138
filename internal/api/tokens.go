package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// GetTokens fetches the configured feed columns.
func (c *Client) GetTokens(ctx context.Context) ([]model.Token, error) {
	var tokens []model.Token
	if err := c.get(ctx, "/tokens", nil, &tokens); err != nil {
		return nil, fmt.Errorf("get tokens: %w", err)
	}
	return tokens, nil
}

// CreateToken creates a feed column config and returns the stored record.
func (c *Client) CreateToken(ctx context.Context, tok model.Token) (*model.Token, error) {
	tok.ID = ""

	var created model.Token
	if err := c.send(ctx, http.MethodPost, "/tokens", tok, &created); err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &created, nil
}

// UpdateToken updates a feed column config by ID.
func (c *Client) UpdateToken(ctx context.Context, id string, tok model.Token) (*model.Token, error) {
	var updated model.Token
	if err := c.send(ctx, http.MethodPut, "/tokens/"+id, tok, &updated); err != nil {
		return nil, fmt.Errorf("update token %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteToken deletes a feed column config by ID.
func (c *Client) DeleteToken(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/tokens/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete token %s: %w", id, err)
	}
	return nil
}
