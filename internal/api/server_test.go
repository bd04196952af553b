package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/session"
)

type fakeBackend struct {
	joined  []string
	deleted []string
}

func (f *fakeBackend) Catalog(ctx context.Context) (*cards.RawSet, error) {
	return &cards.RawSet{
		PlayerCards: []map[string]any{
			{"id": float64(1), "name": "Bianchi", "rarity": "rare"},
			{"id": float64(2), "name": "Rossi", "rarity": "common"},
		},
	}, nil
}

func (f *fakeBackend) Collection(ctx context.Context) (*cards.RawSet, error) {
	return &cards.RawSet{
		PlayerCards: []map[string]any{
			{"id": float64(1), "name": "Bianchi", "rarity": "rare", "quantity": float64(3)},
		},
	}, nil
}

func (f *fakeBackend) MyOffers(ctx context.Context) ([]map[string]any, bool, error) {
	return nil, false, nil
}

func (f *fakeBackend) OffersFeed(ctx context.Context) ([]map[string]any, bool, error) {
	return []map[string]any{
		{"id": "f1", "username": "luigi", "offered_card": map[string]any{
			"id": float64(2), "card_type": "player", "name": "Rossi", "rarity": "common",
		}},
	}, false, nil
}

func (f *fakeBackend) CreateOffer(ctx context.Context, cardID int, cardType, wants string) (map[string]any, error) {
	return map[string]any{"id": "created"}, nil
}

func (f *fakeBackend) JoinOffer(ctx context.Context, offerID string) error {
	f.joined = append(f.joined, offerID)
	return nil
}

func (f *fakeBackend) DeleteOffer(ctx context.Context, offerID string) error {
	f.deleted = append(f.deleted, offerID)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	controller := session.NewController(backend, session.WithUsername("mario"))
	if err := controller.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return NewServer(DefaultConfig(), controller, nil, nil), backend
}

func TestNewServerDefaults(t *testing.T) {
	server, _ := newTestServer(t)
	if server.port != 8765 {
		t.Errorf("port = %d, want 8765", server.port)
	}

	server = NewServer(nil, nil, nil, nil)
	if server.port != 8765 {
		t.Errorf("nil config port = %d, want default 8765", server.port)
	}
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestGetCollection(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection/", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data []cards.Card `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("cards = %d, want 2", len(body.Data))
	}
	if body.Data[0].Name != "Rossi" {
		t.Errorf("first card = %q, want Rossi (common sorts first)", body.Data[0].Name)
	}
}

func TestGetCollectionPaginated(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection/?page=2&page_size=1", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data       []cards.Card `json:"data"`
		Page       int          `json:"page"`
		TotalCount int          `json:"total_count"`
		TotalPages int          `json:"total_pages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Page != 2 || body.TotalCount != 2 || body.TotalPages != 2 {
		t.Errorf("pagination = %+v, want page 2 of 2", body)
	}
	if len(body.Data) != 1 || body.Data[0].Name != "Bianchi" {
		t.Errorf("page data = %+v, want Bianchi", body.Data)
	}
}

func TestGetAvailableCopies(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exchange/copies", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data []struct {
			Key string `json:"key"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("copies = %d, want 2", len(body.Data))
	}
	if body.Data[0].Key != "player:1#1" {
		t.Errorf("first copy = %q, want player:1#1", body.Data[0].Key)
	}
}

func TestCreateOffer(t *testing.T) {
	server, _ := newTestServer(t)

	payload := []byte(`{"card_id": 1, "card_type": "player", "wants": "any epic"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exchange/offers", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateOfferRejectsUnknownCard(t *testing.T) {
	server, _ := newTestServer(t)

	payload := []byte(`{"card_id": 999, "card_type": "player"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exchange/offers", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJoinOffer(t *testing.T) {
	server, backend := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exchange/offers/f1/join", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(backend.joined) != 1 || backend.joined[0] != "f1" {
		t.Errorf("joined = %v, want [f1]", backend.joined)
	}
}

func TestContentTypeEnforcement(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exchange/offers",
		bytes.NewReader([]byte(`{"card_id":1,"card_type":"player"}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rec.Code)
	}
}

func TestNotificationsUnconfigured(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSystemStatus(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/status", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["state"] != "ready" {
		t.Errorf("state = %v, want ready", body.Data["state"])
	}
}
