// Package notifications polls the backend for exchange notifications and
// tracks which ones the user has already seen.
package notifications

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage/repository"
)

// DefaultInterval is how often the poller checks for new notifications.
const DefaultInterval = 30 * time.Second

// Source is the backend surface the poller needs.
type Source interface {
	Notifications(ctx context.Context) ([]backend.Notification, error)
	MarkNotificationsRead(ctx context.Context, ids []string) error
}

var _ Source = (*backend.Client)(nil)

// Handler receives notifications the user has not seen before.
type Handler func(backend.Notification)

// Poller periodically fetches exchange notifications, filters out ones
// already seen, and hands the rest to a handler.
type Poller struct {
	source   Source
	seen     repository.NotificationRepository
	logger   *log.Logger
	interval time.Duration
	handler  Handler

	mu      sync.Mutex
	pending []backend.Notification
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithHandler sets the callback invoked once per unseen notification.
func WithHandler(h Handler) Option {
	return func(p *Poller) { p.handler = h }
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

// NewPoller creates a poller. The seen repository may be nil, in which case
// dedup only lasts for the process lifetime.
func NewPoller(source Source, seen repository.NotificationRepository, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		seen:     seen,
		logger:   log.Default(),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until the context is cancelled. A first poll happens
// immediately; errors are logged and the loop keeps going.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.Poll(ctx); err != nil {
		p.logger.Printf("notifications: poll failed: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				p.logger.Printf("notifications: poll failed: %v", err)
			}
		}
	}
}

// Poll fetches once and dispatches unseen notifications. Already-seen ids
// are skipped; newly seen ones are remembered.
func (p *Poller) Poll(ctx context.Context) error {
	fetched, err := p.source.Notifications(ctx)
	if err != nil {
		return err
	}

	seenIDs := map[string]bool{}
	if p.seen != nil {
		if ids, err := p.seen.SeenIDs(ctx); err == nil {
			seenIDs = ids
		} else {
			p.logger.Printf("notifications: seen lookup failed: %v", err)
		}
	}

	var fresh []backend.Notification
	var freshIDs []string
	for _, n := range fetched {
		if n.ID == "" || seenIDs[n.ID] {
			continue
		}
		fresh = append(fresh, n)
		freshIDs = append(freshIDs, n.ID)
	}
	if len(fresh) == 0 {
		return nil
	}

	if p.seen != nil {
		if err := p.seen.MarkSeen(ctx, freshIDs); err != nil {
			p.logger.Printf("notifications: mark seen failed: %v", err)
		}
	}

	p.mu.Lock()
	p.pending = append(p.pending, fresh...)
	p.mu.Unlock()

	if p.handler != nil {
		for _, n := range fresh {
			p.handler(n)
		}
	}
	return nil
}

// Pending returns notifications delivered but not yet marked read.
func (p *Poller) Pending() []backend.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]backend.Notification, len(p.pending))
	copy(out, p.pending)
	return out
}

// MarkRead removes the given ids locally first, then tells the backend.
// When the backend call fails the removed entries are restored, so a failed
// mark-read never loses a notification.
func (p *Poller) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	p.mu.Lock()
	var kept, removed []backend.Notification
	for _, n := range p.pending {
		if drop[n.ID] {
			removed = append(removed, n)
		} else {
			kept = append(kept, n)
		}
	}
	p.pending = kept
	p.mu.Unlock()

	if err := p.source.MarkNotificationsRead(ctx, ids); err != nil {
		p.mu.Lock()
		p.pending = append(p.pending, removed...)
		p.mu.Unlock()
		return err
	}
	return nil
}
