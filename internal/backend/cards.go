package backend

import (
	"context"
	"fmt"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
)

// Catalog fetches the public card catalog: every card that exists, grouped
// by type, without ownership information.
func (c *Client) Catalog(ctx context.Context) (*cards.RawSet, error) {
	var set cards.RawSet
	if err := c.get(ctx, "/api/cards/all/", &set); err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}
	return &set, nil
}

// Collection fetches the authenticated user's owned cards with quantities.
func (c *Client) Collection(ctx context.Context) (*cards.RawSet, error) {
	var set cards.RawSet
	if err := c.authedGet(ctx, "/api/packs/collection/", &set); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &set, nil
}
