// Package session orchestrates fetch and refresh of the exchange state:
// catalog, collection, the user's offers and the community feed, plus the
// optimistic entries created locally before the backend confirms them.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/exchange"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage"
)

// State is the controller's lifecycle phase.
type State string

const (
	// StateLoading is the initial fetch; no data loaded yet.
	StateLoading State = "loading"
	// StateReady means data is loaded and current.
	StateReady State = "ready"
	// StateRefreshing is a silent re-fetch that keeps old data visible.
	StateRefreshing State = "refreshing"
)

// Backend is the slice of the API client the controller needs. It is an
// interface so tests can run against an httptest server or a stub.
type Backend interface {
	Catalog(ctx context.Context) (*cards.RawSet, error)
	Collection(ctx context.Context) (*cards.RawSet, error)
	MyOffers(ctx context.Context) ([]map[string]any, bool, error)
	OffersFeed(ctx context.Context) ([]map[string]any, bool, error)
	CreateOffer(ctx context.Context, cardID int, cardType, wants string) (map[string]any, error)
	JoinOffer(ctx context.Context, offerID string) error
	DeleteOffer(ctx context.Context, offerID string) error
}

var _ Backend = (*backend.Client)(nil)

// Controller owns the client-side exchange state. All accessors return
// copies, so callers never race against a concurrent refresh.
type Controller struct {
	backend  Backend
	store    *storage.Store
	logger   *log.Logger
	username string

	mu         sync.Mutex
	state      State
	lastErr    error
	cards      []cards.Card
	myOffers   []exchange.Listing
	feedOffers []exchange.Listing
	lastSync   time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore attaches a local cache. Successful syncs are saved to it and
// Load falls back to it when the backend is unreachable.
func WithStore(store *storage.Store) Option {
	return func(c *Controller) { c.store = store }
}

// WithUsername sets the display name stamped on optimistic listings.
func WithUsername(username string) Option {
	return func(c *Controller) { c.username = username }
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a controller in the loading state.
func NewController(b Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: b,
		logger:  log.Default(),
		state:   StateLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetchResult is one complete sync off the backend.
type fetchResult struct {
	cards       []cards.Card
	myOffers    []exchange.Listing
	mineMissing bool
	feedOffers  []exchange.Listing
}

func (c *Controller) fetchAll(ctx context.Context) (fetchResult, error) {
	var result fetchResult

	catalog, err := c.backend.Catalog(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch catalog: %w", err)
	}
	collection, err := c.backend.Collection(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch collection: %w", err)
	}
	result.cards = cards.Normalize(catalog, collection)

	mineRaw, mineMissing, err := c.backend.MyOffers(ctx)
	if err != nil {
		return result, err
	}
	result.myOffers = exchange.NormalizeListings(mineRaw)
	result.mineMissing = mineMissing

	feedRaw, _, err := c.backend.OffersFeed(ctx)
	if err != nil {
		return result, err
	}
	result.feedOffers = exchange.NormalizeListings(feedRaw)

	return result, nil
}

// apply installs a fetch result. When the mine endpoint reported missing
// (404/204), surviving optimistic entries are kept instead of being wiped,
// so a freshly proposed offer does not vanish before the backend lists it.
func (c *Controller) apply(result fetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cards = result.cards
	c.feedOffers = result.feedOffers

	if result.mineMissing {
		var pending []exchange.Listing
		for _, listing := range c.myOffers {
			if listing.IsPending() {
				pending = append(pending, listing)
			}
		}
		c.myOffers = pending
	} else {
		c.myOffers = result.myOffers
	}

	c.state = StateReady
	c.lastErr = nil
	c.lastSync = time.Now()
}

func (c *Controller) persist(ctx context.Context, result fetchResult, source string) {
	if c.store == nil {
		return
	}
	snap := storage.Snapshot{
		Cards:      result.cards,
		FeedOffers: result.feedOffers,
	}
	if !result.mineMissing {
		snap.MyOffers = result.myOffers
	}
	if err := c.store.SaveSnapshot(ctx, snap, source); err != nil {
		c.logger.Printf("session: cache save failed: %v", err)
	}
}

// Load performs the initial fetch. On failure it falls back to the local
// cache when one is attached; the error is still surfaced so the caller can
// show it alongside the stale data.
func (c *Controller) Load(ctx context.Context) error {
	result, err := c.fetchAll(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		hasData := len(c.cards) > 0
		c.mu.Unlock()

		if !hasData && c.store != nil {
			if snap, cacheErr := c.store.LoadSnapshot(ctx); cacheErr == nil && len(snap.Cards) > 0 {
				c.mu.Lock()
				c.cards = snap.Cards
				c.myOffers = snap.MyOffers
				c.feedOffers = snap.FeedOffers
				c.state = StateReady
				c.mu.Unlock()
				c.logger.Printf("session: backend unreachable, serving cached data: %v", err)
			}
		}
		return err
	}

	c.apply(result)
	c.persist(ctx, result, "sync")
	return nil
}

// Refresh re-fetches silently. Existing data stays visible throughout, and
// a failure only sets the error overlay without clearing anything.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateReady {
		c.state = StateRefreshing
	}
	c.mu.Unlock()

	result, err := c.fetchAll(ctx)
	if err != nil {
		c.mu.Lock()
		if c.state == StateRefreshing {
			c.state = StateReady
		}
		c.lastErr = err
		c.mu.Unlock()
		return err
	}

	c.apply(result)
	c.persist(ctx, result, "sync")
	return nil
}

// Propose publishes a trade offer for one spare copy of card. The listing
// appears immediately as an optimistic entry, then a silent refresh
// reconciles it with the backend's view.
func (c *Controller) Propose(ctx context.Context, card cards.Card, wants string) error {
	if _, err := c.backend.CreateOffer(ctx, card.ID, string(card.Type), wants); err != nil {
		return err
	}

	c.mu.Lock()
	c.myOffers = append(c.myOffers, exchange.NewOptimisticListing(c.username, card, wants))
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		// The offer was created; the optimistic entry stays until the next
		// successful refresh.
		c.logger.Printf("session: refresh after propose failed: %v", err)
	}
	return nil
}

// Join accepts another user's offer, then refreshes.
func (c *Controller) Join(ctx context.Context, offerID string) error {
	if err := c.backend.JoinOffer(ctx, offerID); err != nil {
		return err
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Printf("session: refresh after join failed: %v", err)
	}
	return nil
}

// Delete cancels one of the user's offers. An optimistic-only entry is
// removed locally without a network call; confirmed offers go through the
// backend and a refresh.
func (c *Controller) Delete(ctx context.Context, offerID string) error {
	c.mu.Lock()
	pendingOnly := false
	for _, listing := range c.myOffers {
		if listing.ID == offerID && listing.IsPending() {
			pendingOnly = true
			break
		}
	}
	if pendingOnly {
		kept := c.myOffers[:0]
		for _, listing := range c.myOffers {
			if listing.ID != offerID {
				kept = append(kept, listing)
			}
		}
		c.myOffers = kept
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.backend.DeleteOffer(ctx, offerID); err != nil {
		return err
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Printf("session: refresh after delete failed: %v", err)
	}
	return nil
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error overlay, nil when the last sync succeeded.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearErr dismisses the error overlay without touching data.
func (c *Controller) ClearErr() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

// LastSync returns when the last successful sync completed.
func (c *Controller) LastSync() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// Cards returns a copy of the normalized card list.
func (c *Controller) Cards() []cards.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cards.Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// MyOffers returns a copy of the user's offers, optimistic entries included.
func (c *Controller) MyOffers() []exchange.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]exchange.Listing, len(c.myOffers))
	copy(out, c.myOffers)
	return out
}

// FeedOffers returns a copy of the community feed.
func (c *Controller) FeedOffers() []exchange.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]exchange.Listing, len(c.feedOffers))
	copy(out, c.feedOffers)
	return out
}

// AvailableCopies returns the spare copies still free to offer: every copy
// beyond the first of each owned card, minus those already reserved by an
// outgoing offer.
func (c *Controller) AvailableCopies() []exchange.TradeableCopy {
	c.mu.Lock()
	defer c.mu.Unlock()
	copies := exchange.BuildTradeableCopies(c.cards)
	return exchange.FilterReserved(copies, c.myOffers)
}
