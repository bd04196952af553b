package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/exchange"
)

// Offer directions distinguish the user's own offers from the community feed.
const (
	DirectionMine = "mine"
	DirectionFeed = "feed"
)

// OfferRepository caches the last-seen exchange listings per direction.
type OfferRepository interface {
	// Replace swaps the cached listings of one direction. Optimistic entries
	// are never persisted.
	Replace(ctx context.Context, direction string, listings []exchange.Listing) error

	// List returns the cached listings of one direction, newest first.
	List(ctx context.Context, direction string) ([]exchange.Listing, error)
}

type offerRepository struct {
	db *sql.DB
}

// NewOfferRepository creates an offer repository.
func NewOfferRepository(db *sql.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Replace(ctx context.Context, direction string, listings []exchange.Listing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM offers WHERE direction = ?`, direction); err != nil {
		return fmt.Errorf("clear %s offers: %w", direction, err)
	}

	now := time.Now()
	for _, listing := range listings {
		if listing.IsPending() {
			continue
		}
		cardJSON, err := json.Marshal(listing.OfferedCard)
		if err != nil {
			return fmt.Errorf("encode card for offer %s: %w", listing.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO offers (id, direction, username, wants, required_rarity, status, card_json, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, listing.ID, direction, listing.Username, nullString(listing.Wants),
			string(listing.RequiredRarity), nullString(listing.Status), string(cardJSON), now)
		if err != nil {
			return fmt.Errorf("insert offer %s: %w", listing.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit offers: %w", err)
	}
	return nil
}

func (r *offerRepository) List(ctx context.Context, direction string) ([]exchange.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, wants, required_rarity, status, card_json
		FROM offers
		WHERE direction = ?
		ORDER BY updated_at DESC, id
	`, direction)
	if err != nil {
		return nil, fmt.Errorf("list %s offers: %w", direction, err)
	}
	defer func() { _ = rows.Close() }()

	var listings []exchange.Listing
	for rows.Next() {
		var listing exchange.Listing
		var wants, status sql.NullString
		var rarity, cardJSON string
		if err := rows.Scan(&listing.ID, &listing.Username, &wants, &rarity, &status, &cardJSON); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		var card cards.Card
		if err := json.Unmarshal([]byte(cardJSON), &card); err != nil {
			// A corrupt row should not hide the rest of the cache.
			continue
		}
		listing.OfferedCard = card
		listing.Wants = wants.String
		listing.Status = status.String
		listing.RequiredRarity = cards.Rarity(rarity)
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offers: %w", err)
	}
	return listings, nil
}
