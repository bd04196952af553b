// Package repository contains the persistence layer over the cache database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
)

// CardRepository persists normalized card snapshots.
type CardRepository interface {
	// ReplaceAll swaps the cached card list for a fresh snapshot, recording a
	// history entry for each quantity change.
	ReplaceAll(ctx context.Context, snapshot []cards.Card, source string) error

	// List returns the cached cards ordered by rarity priority, then name.
	List(ctx context.Context) ([]cards.Card, error)

	// Get returns one cached card by key, with found=false when absent.
	Get(ctx context.Context, t cards.Type, id int) (cards.Card, bool, error)

	// History returns recent quantity changes, newest first.
	History(ctx context.Context, limit int) ([]CollectionChange, error)
}

// CollectionChange is one recorded quantity delta.
type CollectionChange struct {
	ID            int64
	CardKey       string
	QuantityDelta int
	QuantityAfter int
	Source        string
	CreatedAt     time.Time
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a card repository.
func NewCardRepository(db *sql.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) ReplaceAll(ctx context.Context, snapshot []cards.Card, source string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	previous := make(map[string]int)
	rows, err := tx.QueryContext(ctx, `SELECT card_type, card_id, quantity FROM cards`)
	if err != nil {
		return fmt.Errorf("read previous quantities: %w", err)
	}
	for rows.Next() {
		var cardType string
		var cardID, quantity int
		if err := rows.Scan(&cardType, &cardID, &quantity); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan previous quantity: %w", err)
		}
		previous[cards.Key(cards.Type(cardType), cardID)] = quantity
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate previous quantities: %w", err)
	}
	_ = rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}

	now := time.Now()
	for _, card := range snapshot {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cards (
				card_type, card_id, name, team, season, image_url, rarity,
				quantity, owned, attack, defense, save, attack_bonus,
				defense_bonus, effect, duration, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			string(card.Type), card.ID, card.Name,
			nullString(card.Team), nullString(card.Season), nullString(card.ImageURL),
			string(card.Rarity), card.Quantity, card.Owned,
			nullInt(card.Attack), nullInt(card.Defense), nullInt(card.Save),
			nullInt(card.AttackBonus), nullInt(card.DefenseBonus),
			nullString(card.Effect), nullInt(card.Duration), now,
		)
		if err != nil {
			return fmt.Errorf("insert card %s: %w", card.Key(), err)
		}

		if delta := card.Quantity - previous[card.Key()]; delta != 0 {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO collection_history (card_key, quantity_delta, quantity_after, source, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, card.Key(), delta, card.Quantity, nullString(source), now)
			if err != nil {
				return fmt.Errorf("record change for %s: %w", card.Key(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

const cardColumns = `card_type, card_id, name, team, season, image_url, rarity,
	quantity, owned, attack, defense, save, attack_bonus, defense_bonus, effect, duration`

func (r *cardRepository) List(ctx context.Context) ([]cards.Card, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cards
		ORDER BY CASE rarity
			WHEN 'common' THEN 0
			WHEN 'rare' THEN 1
			WHEN 'epic' THEN 2
			WHEN 'legendary' THEN 3
			ELSE 0 END, name
	`, cardColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []cards.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return out, nil
}

func (r *cardRepository) Get(ctx context.Context, t cards.Type, id int) (cards.Card, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE card_type = ? AND card_id = ?`, cardColumns)
	row := r.db.QueryRowContext(ctx, query, string(t), id)
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return cards.Card{}, false, nil
	}
	if err != nil {
		return cards.Card{}, false, err
	}
	return card, true, nil
}

func (r *cardRepository) History(ctx context.Context, limit int) ([]CollectionChange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, card_key, quantity_delta, quantity_after, source, created_at
		FROM collection_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []CollectionChange
	for rows.Next() {
		var change CollectionChange
		var source sql.NullString
		if err := rows.Scan(&change.ID, &change.CardKey, &change.QuantityDelta,
			&change.QuantityAfter, &source, &change.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		change.Source = source.String
		history = append(history, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (cards.Card, error) {
	var card cards.Card
	var cardType, rarity string
	var team, season, imageURL, effect sql.NullString
	var attack, defense, save, attackBonus, defenseBonus, duration sql.NullInt64

	err := row.Scan(
		&cardType, &card.ID, &card.Name, &team, &season, &imageURL, &rarity,
		&card.Quantity, &card.Owned, &attack, &defense, &save,
		&attackBonus, &defenseBonus, &effect, &duration,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return cards.Card{}, err
		}
		return cards.Card{}, fmt.Errorf("scan card: %w", err)
	}

	card.Type = cards.Type(cardType)
	card.Rarity = cards.Rarity(rarity)
	card.Team = team.String
	card.Season = season.String
	card.ImageURL = imageURL.String
	card.Effect = effect.String
	card.Attack = intPtr(attack)
	card.Defense = intPtr(defense)
	card.Save = intPtr(save)
	card.AttackBonus = intPtr(attackBonus)
	card.DefenseBonus = intPtr(defenseBonus)
	card.Duration = intPtr(duration)
	return card, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
