package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/exchange"
)

// runExchange dispatches the exchange subcommands.
func (a *app) runExchange(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printExchangeUsage()
		return nil
	}

	switch args[0] {
	case "mine":
		if err := a.session.Load(ctx); err != nil {
			return err
		}
		return printListings("Your offers", a.session.MyOffers())
	case "feed":
		if err := a.session.Load(ctx); err != nil {
			return err
		}
		return printListings("Community offers", a.session.FeedOffers())
	case "copies":
		if err := a.session.Load(ctx); err != nil {
			return err
		}
		return printCopies(a.session.AvailableCopies())
	case "propose":
		return a.runPropose(ctx, args[1:])
	case "join":
		if len(args) < 2 {
			return fmt.Errorf("usage: cartecalcio exchange join <offer-id>")
		}
		if err := a.session.Load(ctx); err != nil {
			return err
		}
		if err := a.session.Join(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("Joined offer %s.\n", args[1])
		return nil
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: cartecalcio exchange delete <offer-id>")
		}
		if err := a.session.Load(ctx); err != nil {
			return err
		}
		if err := a.session.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("Cancelled offer %s.\n", args[1])
		return nil
	default:
		printExchangeUsage()
		return fmt.Errorf("unknown exchange command: %s", args[0])
	}
}

// runPropose offers one spare copy, addressed by its "type:id" key.
func (a *app) runPropose(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("propose", flag.ExitOnError)
	cardKey := fs.String("card", "", "Card to offer, as type:id (e.g. player:12)")
	wants := fs.String("wants", "", "Free-text description of what you want back")
	_ = fs.Parse(args)

	cardType, cardID, err := parseCardKey(*cardKey)
	if err != nil {
		return err
	}

	if err := a.session.Load(ctx); err != nil {
		return err
	}

	var offered cards.Card
	found := false
	for _, copyCandidate := range a.session.AvailableCopies() {
		if copyCandidate.Card.Type == cardType && copyCandidate.Card.ID == cardID {
			offered = copyCandidate.Card
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no spare copy of %s available to offer", *cardKey)
	}

	if err := a.session.Propose(ctx, offered, *wants); err != nil {
		return err
	}
	fmt.Printf("Offer for %s submitted.\n", offered.Name)
	return nil
}

func parseCardKey(key string) (cards.Type, int, error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("card must be type:id, got %q", key)
	}
	t := cards.Type(parts[0])
	if !t.Valid() {
		return "", 0, fmt.Errorf("invalid card type %q", parts[0])
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid card id %q", parts[1])
	}
	return t, id, nil
}

func printListings(title string, listings []exchange.Listing) error {
	fmt.Println(title)
	if len(listings) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, listing := range listings {
		pending := ""
		if listing.IsPending() {
			pending = " (pending)"
		}
		wants := listing.Wants
		if wants == "" {
			wants = fmt.Sprintf("any %s card", listing.RequiredRarity)
		}
		fmt.Printf("  [%s]%s %s offers %s (%s) for %s\n",
			listing.ID, pending, listing.Username,
			listing.OfferedCard.Name, listing.OfferedCard.Rarity, wants)
	}
	return nil
}

func printCopies(copies []exchange.TradeableCopy) error {
	fmt.Println("Spare copies available to offer")
	if len(copies) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, tc := range copies {
		fmt.Printf("  %-20s %s (%s), copy %d of %d\n",
			tc.Key, tc.Card.Name, tc.Card.Rarity, tc.Slot, tc.TotalAvailable)
	}
	return nil
}

func printExchangeUsage() {
	fmt.Println("Usage: cartecalcio exchange <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  mine                          - List your outgoing offers")
	fmt.Println("  feed                          - List community offers")
	fmt.Println("  copies                        - List spare copies free to offer")
	fmt.Println("  propose -card type:id [-wants text]")
	fmt.Println("  join <offer-id>               - Accept a community offer")
	fmt.Println("  delete <offer-id>             - Cancel one of your offers")
}
