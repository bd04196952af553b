package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage"
)

type stubSource struct {
	notifications []backend.Notification
	fetchErr      error
	markErr       error
	markedRead    [][]string
}

func (s *stubSource) Notifications(ctx context.Context) ([]backend.Notification, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.notifications, nil
}

func (s *stubSource) MarkNotificationsRead(ctx context.Context, ids []string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.markedRead = append(s.markedRead, ids)
	return nil
}

func newTestRepo(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(storage.DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPollerDeliversUnseen(t *testing.T) {
	store := newTestRepo(t)
	source := &stubSource{notifications: []backend.Notification{
		{ID: "n1", Title: "Trade completed"},
		{ID: "n2", Title: "Offer joined"},
	}}

	var delivered []string
	p := NewPoller(source, store.Notifications, WithHandler(func(n backend.Notification) {
		delivered = append(delivered, n.ID)
	}))

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(delivered) != 2 {
		t.Fatalf("delivered = %v, want n1 n2", delivered)
	}

	// A second poll with the same payload delivers nothing new.
	delivered = nil
	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(delivered) != 0 {
		t.Errorf("redelivered = %v, want none", delivered)
	}
	if got := p.Pending(); len(got) != 2 {
		t.Errorf("Pending() = %d entries, want 2", len(got))
	}
}

func TestPollerSkipsBlankIDs(t *testing.T) {
	source := &stubSource{notifications: []backend.Notification{
		{ID: "", Title: "no id"},
		{ID: "n1", Title: "ok"},
	}}
	p := NewPoller(source, nil)

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	pending := p.Pending()
	if len(pending) != 1 || pending[0].ID != "n1" {
		t.Fatalf("Pending() = %+v, want only n1", pending)
	}
}

func TestPollerFetchError(t *testing.T) {
	source := &stubSource{fetchErr: errors.New("backend down")}
	p := NewPoller(source, nil)

	if err := p.Poll(context.Background()); err == nil {
		t.Fatal("Poll() error = nil, want failure")
	}
	if len(p.Pending()) != 0 {
		t.Errorf("Pending() = %v, want empty", p.Pending())
	}
}

func TestMarkReadOptimistic(t *testing.T) {
	source := &stubSource{notifications: []backend.Notification{
		{ID: "n1"}, {ID: "n2"},
	}}
	p := NewPoller(source, nil)
	ctx := context.Background()

	if err := p.Poll(ctx); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if err := p.MarkRead(ctx, []string{"n1"}); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	pending := p.Pending()
	if len(pending) != 1 || pending[0].ID != "n2" {
		t.Fatalf("Pending() = %+v, want only n2", pending)
	}
	if len(source.markedRead) != 1 || source.markedRead[0][0] != "n1" {
		t.Errorf("marked read = %v, want [[n1]]", source.markedRead)
	}
}

func TestMarkReadFailureRestoresEntries(t *testing.T) {
	source := &stubSource{notifications: []backend.Notification{
		{ID: "n1"}, {ID: "n2"},
	}}
	p := NewPoller(source, nil)
	ctx := context.Background()

	if err := p.Poll(ctx); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	source.markErr = errors.New("backend down")
	if err := p.MarkRead(ctx, []string{"n1"}); err == nil {
		t.Fatal("MarkRead() error = nil, want failure")
	}

	if len(p.Pending()) != 2 {
		t.Fatalf("Pending() = %+v, want both entries restored", p.Pending())
	}
}
