package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/packs"
)

// runPacks lists packs or purchases one.
func (a *app) runPacks(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		return a.runPacksList(ctx)
	}
	if args[0] == "buy" {
		return a.runPacksBuy(ctx, args[1:])
	}
	fmt.Println("Usage: cartecalcio packs [list|buy -slug <slug>]")
	return fmt.Errorf("unknown packs command: %s", args[0])
}

func (a *app) runPacksList(ctx context.Context) error {
	available, err := a.client.Packs(ctx)
	if err != nil {
		return err
	}
	if len(available) == 0 {
		fmt.Println("No packs available.")
		return nil
	}
	for _, pack := range available {
		fmt.Printf("%-15s %-25s %4d credits, %d cards\n",
			pack.Slug, pack.Name, pack.Price, pack.CardsPerPack)
	}
	return nil
}

func (a *app) runPacksBuy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	slug := fs.String("slug", "", "Pack slug to purchase")
	_ = fs.Parse(args)

	if *slug == "" {
		return fmt.Errorf("buy requires -slug")
	}

	purchase, err := a.client.PurchasePack(ctx, *slug)
	if err != nil {
		return err
	}
	opened := packs.FromPurchase(purchase)

	fmt.Printf("Opened pack %s:\n", *slug)
	for _, card := range opened.Cards {
		printCard(card)
	}
	if opened.Dropped > 0 {
		fmt.Printf("(%d unreadable card record(s) skipped)\n", opened.Dropped)
	}
	if best, ok := opened.Best(); ok {
		fmt.Printf("\nBest pull: %s (%s)\n", best.Name, best.Rarity)
	}
	fmt.Printf("Remaining credits: %d\n", opened.Credits)
	return nil
}
