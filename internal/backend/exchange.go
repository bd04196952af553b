package backend

import (
	"context"
	"fmt"
	"net/http"
)

// MyOffers fetches the user's outgoing exchange offers as raw records. The
// missing flag is true when the endpoint answered 404/204 ("no offers yet"),
// which callers treat differently from an empty success: optimistic local
// entries survive a missing list, but not an empty one.
func (c *Client) MyOffers(ctx context.Context) (offers []map[string]any, missing bool, err error) {
	missing, err = c.doRequest(ctx, request{
		method:          http.MethodGet,
		path:            "/api/exchange/offers/mine/",
		authed:          true,
		tolerateMissing: true,
	}, &offers)
	if err != nil {
		return nil, false, fmt.Errorf("get my offers: %w", err)
	}
	return offers, missing, nil
}

// OffersFeed fetches open offers from other users, with the same 404/204
// tolerance as MyOffers.
func (c *Client) OffersFeed(ctx context.Context) (offers []map[string]any, missing bool, err error) {
	missing, err = c.doRequest(ctx, request{
		method:          http.MethodGet,
		path:            "/api/exchange/offers/feed/",
		authed:          true,
		tolerateMissing: true,
	}, &offers)
	if err != nil {
		return nil, false, fmt.Errorf("get offers feed: %w", err)
	}
	return offers, missing, nil
}

// CreateOffer publishes a trade proposal for one spare copy of a card.
func (c *Client) CreateOffer(ctx context.Context, cardID int, cardType, wants string) (map[string]any, error) {
	body := map[string]any{
		"card_id":   cardID,
		"card_type": cardType,
	}
	if wants != "" {
		body["wants"] = wants
	}
	var created map[string]any
	_, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/api/exchange/offers/",
		body:   body,
		authed: true,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("create offer for %s #%d: %w", cardType, cardID, err)
	}
	return created, nil
}

// JoinOffer accepts another user's open offer.
func (c *Client) JoinOffer(ctx context.Context, offerID string) error {
	_, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/exchange/offers/%s/join/", offerID),
		authed: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("join offer %s: %w", offerID, err)
	}
	return nil
}

// DeleteOffer cancels one of the user's own offers.
func (c *Client) DeleteOffer(ctx context.Context, offerID string) error {
	_, err := c.doRequest(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/exchange/offers/%s/", offerID),
		authed: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete offer %s: %w", offerID, err)
	}
	return nil
}

// Notifications fetches unread exchange notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var notifications []Notification
	missing, err := c.doRequest(ctx, request{
		method:          http.MethodGet,
		path:            "/api/exchange/notifications/",
		authed:          true,
		tolerateMissing: true,
	}, &notifications)
	if err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}
	if missing {
		return nil, nil
	}
	return notifications, nil
}

// MarkNotificationsRead marks the given notification ids as read.
func (c *Client) MarkNotificationsRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string][]string{"ids": ids}
	_, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/api/exchange/notifications/read/",
		body:   body,
		authed: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
