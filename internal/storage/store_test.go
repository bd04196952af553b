package storage

import (
	"context"
	"testing"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/exchange"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func intp(v int) *int { return &v }

func testCards() []cards.Card {
	return []cards.Card{
		{ID: 3, Type: cards.TypePlayer, Name: "Rossi", Rarity: cards.RarityLegendary,
			Quantity: 1, Owned: true, Attack: intp(90), Defense: intp(40)},
		{ID: 1, Type: cards.TypePlayer, Name: "Bianchi", Rarity: cards.RarityCommon,
			Quantity: 3, Owned: true, Attack: intp(50), Defense: intp(60)},
		{ID: 501, Type: cards.TypeGoalkeeper, Name: "Verdi", Rarity: cards.RarityRare,
			Quantity: 0, Owned: false, Save: intp(75)},
	}
}

func TestStoreSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap := Snapshot{
		Cards: testCards(),
		MyOffers: []exchange.Listing{
			{ID: "10", Username: "mario", OfferedCard: testCards()[0],
				RequiredRarity: cards.RarityLegendary, Status: exchange.StatusOpen},
		},
		FeedOffers: []exchange.Listing{
			{ID: "11", Username: "luigi", OfferedCard: testCards()[1],
				RequiredRarity: cards.RarityCommon, Wants: "any striker"},
		},
	}
	if err := store.SaveSnapshot(ctx, snap, "sync"); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}

	if len(loaded.Cards) != 3 {
		t.Fatalf("loaded %d cards, want 3", len(loaded.Cards))
	}
	// Rarity priority ordering, name as tiebreak.
	wantOrder := []string{"Bianchi", "Verdi", "Rossi"}
	for i, name := range wantOrder {
		if loaded.Cards[i].Name != name {
			t.Errorf("card[%d].Name = %q, want %q", i, loaded.Cards[i].Name, name)
		}
	}
	if got := loaded.Cards[2]; got.Attack == nil || *got.Attack != 90 {
		t.Errorf("legendary card attack = %v, want 90", got.Attack)
	}

	if len(loaded.MyOffers) != 1 || loaded.MyOffers[0].ID != "10" {
		t.Fatalf("MyOffers = %+v, want single offer 10", loaded.MyOffers)
	}
	if loaded.MyOffers[0].OfferedCard.Name != "Rossi" {
		t.Errorf("offer card = %q, want Rossi", loaded.MyOffers[0].OfferedCard.Name)
	}
	if len(loaded.FeedOffers) != 1 || loaded.FeedOffers[0].Wants != "any striker" {
		t.Fatalf("FeedOffers = %+v, want single offer with wants", loaded.FeedOffers)
	}
}

func TestStorePartialSnapshotKeepsExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	full := Snapshot{
		Cards:      testCards(),
		MyOffers:   []exchange.Listing{{ID: "10", Username: "mario", OfferedCard: testCards()[0], RequiredRarity: cards.RarityLegendary}},
		FeedOffers: []exchange.Listing{},
	}
	if err := store.SaveSnapshot(ctx, full, "sync"); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	// A cards-only sync must not wipe the cached offers.
	if err := store.SaveSnapshot(ctx, Snapshot{Cards: testCards()}, "sync"); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(loaded.MyOffers) != 1 {
		t.Fatalf("MyOffers after partial save = %d, want 1", len(loaded.MyOffers))
	}
}

func TestStoreSkipsOptimisticOffers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	offers := []exchange.Listing{
		{ID: "42", Username: "mario", OfferedCard: testCards()[0], RequiredRarity: cards.RarityLegendary},
		exchange.NewOptimisticListing("mario", testCards()[1], ""),
	}
	if err := store.Offers.Replace(ctx, repository.DirectionMine, offers); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := store.Offers.List(ctx, repository.DirectionMine)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "42" {
		t.Fatalf("List() = %+v, want only the confirmed offer", got)
	}
}

func TestCardHistoryRecordsDeltas(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []cards.Card{
		{ID: 1, Type: cards.TypePlayer, Name: "Bianchi", Rarity: cards.RarityCommon, Quantity: 2, Owned: true},
	}
	if err := store.Cards.ReplaceAll(ctx, first, "sync"); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	second := []cards.Card{
		{ID: 1, Type: cards.TypePlayer, Name: "Bianchi", Rarity: cards.RarityCommon, Quantity: 5, Owned: true},
	}
	if err := store.Cards.ReplaceAll(ctx, second, "pack"); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	// Same quantity again: no new history row.
	if err := store.Cards.ReplaceAll(ctx, second, "sync"); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	history, err := store.Cards.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	latest := history[0]
	if latest.QuantityDelta != 3 || latest.QuantityAfter != 5 || latest.Source != "pack" {
		t.Errorf("latest change = %+v, want delta 3 after 5 from pack", latest)
	}
}

func TestCardGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Cards.ReplaceAll(ctx, testCards(), "sync"); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	card, found, err := store.Cards.Get(ctx, cards.TypeGoalkeeper, 501)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if card.Name != "Verdi" || card.Save == nil || *card.Save != 75 {
		t.Errorf("Get() = %+v, want Verdi with save 75", card)
	}

	_, found, err = store.Cards.Get(ctx, cards.TypeCoach, 9999)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for absent card, want false")
	}
}

func TestNotificationSeenTracking(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Notifications.MarkSeen(ctx, []string{"n1", "n2", ""}); err != nil {
		t.Fatalf("MarkSeen() error = %v", err)
	}
	// Marking again must be idempotent.
	if err := store.Notifications.MarkSeen(ctx, []string{"n2", "n3"}); err != nil {
		t.Fatalf("MarkSeen() error = %v", err)
	}

	seen, err := store.Notifications.SeenIDs(ctx)
	if err != nil {
		t.Fatalf("SeenIDs() error = %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("SeenIDs() = %v, want 3 ids", seen)
	}
	for _, id := range []string{"n1", "n2", "n3"} {
		if !seen[id] {
			t.Errorf("SeenIDs() missing %s", id)
		}
	}

	ok, err := store.Notifications.IsSeen(ctx, "n1")
	if err != nil {
		t.Fatalf("IsSeen() error = %v", err)
	}
	if !ok {
		t.Error("IsSeen(n1) = false, want true")
	}
	ok, err = store.Notifications.IsSeen(ctx, "never")
	if err != nil {
		t.Fatalf("IsSeen() error = %v", err)
	}
	if ok {
		t.Error("IsSeen(never) = true, want false")
	}
}
