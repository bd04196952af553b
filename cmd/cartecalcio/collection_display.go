package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
)

// runCollection prints the normalized collection, merged live from the
// backend or read from the cache with -offline.
func (a *app) runCollection(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collection", flag.ExitOnError)
	ownedOnly := fs.Bool("owned", false, "Show only owned cards")
	typeFilter := fs.String("type", "", "Filter by card type (player/goalkeeper/coach/bonusMalus)")
	offline := fs.Bool("offline", false, "Read from the local cache instead of the backend")
	_ = fs.Parse(args)

	var list []cards.Card
	if *offline {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		snap, err := store.LoadSnapshot(ctx)
		if err != nil {
			return err
		}
		list = snap.Cards
	} else {
		if err := a.session.Load(ctx); err != nil {
			return err
		}
		list = a.session.Cards()
	}

	count := 0
	for _, card := range list {
		if *ownedOnly && !card.Owned {
			continue
		}
		if *typeFilter != "" && string(card.Type) != *typeFilter {
			continue
		}
		printCard(card)
		count++
	}
	fmt.Printf("\n%d card(s)\n", count)
	return nil
}

func printCard(card cards.Card) {
	quantity := ""
	if card.Quantity > 0 {
		quantity = fmt.Sprintf(" x%d", card.Quantity)
	}
	fmt.Printf("%-10s %-12s %-25s%s%s\n",
		card.Rarity, card.Type, card.Name, statLine(card), quantity)
}

// statLine renders the stat group matching the card type.
func statLine(card cards.Card) string {
	var parts []string
	switch card.Type {
	case cards.TypePlayer:
		if card.Attack != nil {
			parts = append(parts, fmt.Sprintf("ATT %d", *card.Attack))
		}
		if card.Defense != nil {
			parts = append(parts, fmt.Sprintf("DEF %d", *card.Defense))
		}
	case cards.TypeGoalkeeper:
		if card.Save != nil {
			parts = append(parts, fmt.Sprintf("SAVE %d", *card.Save))
		}
	case cards.TypeCoach:
		if card.AttackBonus != nil {
			parts = append(parts, fmt.Sprintf("ATT+%d", *card.AttackBonus))
		}
		if card.DefenseBonus != nil {
			parts = append(parts, fmt.Sprintf("DEF+%d", *card.DefenseBonus))
		}
	case cards.TypeBonusMalus:
		if card.Effect != "" {
			parts = append(parts, card.Effect)
		}
		if card.Duration != nil {
			parts = append(parts, fmt.Sprintf("%d turn(s)", *card.Duration))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}
