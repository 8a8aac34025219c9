package domain

import "testing"

func TestBuildSnapshot_PartitionAndSort(t *testing.T) {
	orders := []Order{
		{Type: OrderTypeSell, Platinum: 60, Trader: "s1"},
		{Type: OrderTypeBuy, Platinum: 40, Trader: "b1"},
		{Type: OrderTypeSell, Platinum: 45, Trader: "s2"},
		{Type: OrderTypeBuy, Platinum: 55, Trader: "b2"},
		{Type: OrderTypeSell, Platinum: 50, Trader: "s3"},
		{Type: OrderTypeBuy, Platinum: 55, Trader: "b3"},
	}

	snap := BuildSnapshot("secura_dual_cestra", orders)

	if len(snap.Buyers) != 3 || len(snap.Sellers) != 3 {
		t.Fatalf("Expected 3 buyers and 3 sellers, got %d/%d", len(snap.Buyers), len(snap.Sellers))
	}

	// Buyers price-descending: best bid first
	for i := 1; i < len(snap.Buyers); i++ {
		if snap.Buyers[i].Platinum > snap.Buyers[i-1].Platinum {
			t.Errorf("Buyers not price-descending at index %d", i)
		}
	}

	// Sellers price-ascending: best ask first
	for i := 1; i < len(snap.Sellers); i++ {
		if snap.Sellers[i].Platinum < snap.Sellers[i-1].Platinum {
			t.Errorf("Sellers not price-ascending at index %d", i)
		}
	}

	// Stable sort: b2 arrived before b3 at the same price
	if snap.Buyers[0].Trader != "b2" || snap.Buyers[1].Trader != "b3" {
		t.Errorf("Price ties must keep arrival order, got %s then %s",
			snap.Buyers[0].Trader, snap.Buyers[1].Trader)
	}
}

func TestSnapshot_BestPrices(t *testing.T) {
	snap := BuildSnapshot("x", []Order{
		{Type: OrderTypeSell, Platinum: 60, Trader: "s1"},
		{Type: OrderTypeSell, Platinum: 45, Trader: "s2"},
		{Type: OrderTypeBuy, Platinum: 40, Trader: "b1"},
	})

	if ask := snap.BestAsk(); ask == nil || ask.Platinum != 45 {
		t.Errorf("Expected best ask 45, got %v", ask)
	}
	if bid := snap.BestBid(); bid == nil || bid.Platinum != 40 {
		t.Errorf("Expected best bid 40, got %v", bid)
	}

	empty := BuildSnapshot("y", nil)
	if empty.BestAsk() != nil || empty.BestBid() != nil {
		t.Error("Empty snapshot should have no best prices")
	}
}

func TestOrderKey_IgnoresQuantity(t *testing.T) {
	a := Order{Type: OrderTypeSell, Platinum: 45, Quantity: 2, Trader: "A"}
	b := Order{Type: OrderTypeSell, Platinum: 45, Quantity: 9, Trader: "A"}

	if a.Key() != b.Key() {
		t.Error("Orders differing only in quantity must share an identity key")
	}

	c := Order{Type: OrderTypeSell, Platinum: 46, Quantity: 2, Trader: "A"}
	if a.Key() == c.Key() {
		t.Error("Orders with different prices must have different identity keys")
	}
}
