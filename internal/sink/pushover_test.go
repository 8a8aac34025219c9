package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"platwatch/internal/domain"
)

func testAlert() domain.Alert {
	return domain.Alert{
		ID:       "a1",
		ItemID:   "secura_dual_cestra",
		ItemName: "Secura Dual Cestra",
		Order:    domain.Order{Type: domain.OrderTypeSell, Platinum: 45, Quantity: 2, Trader: "TraderA"},
		At:       time.Unix(1756500000, 0),
	}
}

func TestPushoverSink_Deliver(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Write([]byte(`{"status": 1, "request": "r1"}`))
	}))
	defer server.Close()

	s := NewPushoverSink("tok", "usr")
	s.apiURL = server.URL

	if err := s.Deliver(context.Background(), testAlert()); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if received["token"] != "tok" || received["user"] != "usr" {
		t.Errorf("credentials not carried: %v", received)
	}
	if received["timestamp"] != float64(1756500000) {
		t.Errorf("unexpected timestamp: %v", received["timestamp"])
	}
}

func TestPushoverSink_ServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": 0, "errors": ["application token is invalid"]}`))
	}))
	defer server.Close()

	s := NewPushoverSink("bad", "usr")
	s.apiURL = server.URL

	if err := s.Deliver(context.Background(), testAlert()); err == nil {
		t.Fatal("expected error for rejected message")
	}
}
