package backend

import (
	"context"
	"fmt"
	"net/http"
)

// Packs lists the purchasable card packs.
func (c *Client) Packs(ctx context.Context) ([]Pack, error) {
	var packs []Pack
	if err := c.authedGet(ctx, "/api/packs/", &packs); err != nil {
		return nil, fmt.Errorf("get packs: %w", err)
	}
	return packs, nil
}

// PurchasePack buys and opens a pack, returning the drawn cards and the
// remaining credit balance. Insufficient credits surface as an *APIError
// carrying the server's detail message.
func (c *Client) PurchasePack(ctx context.Context, slug string) (*PackPurchase, error) {
	var purchase PackPurchase
	_, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/packs/%s/purchase/", slug),
		authed: true,
	}, &purchase)
	if err != nil {
		return nil, fmt.Errorf("purchase pack %s: %w", slug, err)
	}
	return &purchase, nil
}
