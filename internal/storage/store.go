package storage

import (
	"context"
	"fmt"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/exchange"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage/repository"
)

// Store bundles the repositories behind a single cache facade. The session
// controller saves every successful sync through it and reads it back when
// the backend is unreachable.
type Store struct {
	db            *DB
	Cards         repository.CardRepository
	Offers        repository.OfferRepository
	Notifications repository.NotificationRepository
}

// NewStore opens the cache database and wires the repositories.
func NewStore(config *Config) (*Store, error) {
	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:            db,
		Cards:         repository.NewCardRepository(db.Conn()),
		Offers:        repository.NewOfferRepository(db.Conn()),
		Notifications: repository.NewNotificationRepository(db.Conn()),
	}, nil
}

// Snapshot is the full cached state of one sync.
type Snapshot struct {
	Cards      []cards.Card
	MyOffers   []exchange.Listing
	FeedOffers []exchange.Listing
}

// SaveSnapshot persists a complete sync result. Offer lists that are nil are
// left untouched so a partial sync never wipes cached data.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot, source string) error {
	if snap.Cards != nil {
		if err := s.Cards.ReplaceAll(ctx, snap.Cards, source); err != nil {
			return fmt.Errorf("save cards: %w", err)
		}
	}
	if snap.MyOffers != nil {
		if err := s.Offers.Replace(ctx, repository.DirectionMine, snap.MyOffers); err != nil {
			return fmt.Errorf("save my offers: %w", err)
		}
	}
	if snap.FeedOffers != nil {
		if err := s.Offers.Replace(ctx, repository.DirectionFeed, snap.FeedOffers); err != nil {
			return fmt.Errorf("save feed offers: %w", err)
		}
	}
	return nil
}

// LoadSnapshot reads the last cached state.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	cardList, err := s.Cards.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load cards: %w", err)
	}
	mine, err := s.Offers.List(ctx, repository.DirectionMine)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load my offers: %w", err)
	}
	feed, err := s.Offers.List(ctx, repository.DirectionFeed)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load feed offers: %w", err)
	}
	return Snapshot{Cards: cardList, MyOffers: mine, FeedOffers: feed}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
