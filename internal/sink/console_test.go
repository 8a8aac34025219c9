package sink

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"platwatch/internal/domain"
)

func TestConsoleSink_Deliver(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSinkWriter(&buf)

	alert := domain.Alert{
		ID:       "a1",
		ItemID:   "secura_dual_cestra",
		ItemName: "Secura Dual Cestra",
		Order: domain.Order{
			Type:     domain.OrderTypeSell,
			Platinum: 45,
			Quantity: 2,
			Trader:   "TraderA",
			Platform: "pc",
		},
		At: time.Now(),
	}

	if err := s.Deliver(context.Background(), alert); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	line := buf.String()
	for _, want := range []string{"Secura Dual Cestra", "TraderA", "selling", "45p", "2x", "pc"} {
		if !strings.Contains(line, want) {
			t.Errorf("Output %q should contain %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("Output should be one terminated line")
	}
}

func TestConsoleSink_BuyVerb(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSinkWriter(&buf)

	alert := domain.Alert{
		ItemName: "X",
		Order:    domain.Order{Type: domain.OrderTypeBuy, Platinum: 85, Quantity: 1, Trader: "B"},
	}

	if err := s.Deliver(context.Background(), alert); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if !strings.Contains(buf.String(), "buying") {
		t.Errorf("Buy order should render as buying: %q", buf.String())
	}
}
