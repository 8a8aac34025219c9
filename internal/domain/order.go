package domain

import "sort"

// Order is one live entry in an item's order book.
// Ephemeral: fetched fresh each cycle, never persisted.
// Prices are whole platinum, so int64 rather than decimal.
type Order struct {
	Type     string // "buy" or "sell"
	Platinum int64  // Unit price in platinum
	Quantity int64
	Trader   string // In-game name of the posting trader
	Status   string // "ingame", "online", "offline"
	Platform string // "pc", "xbox", "ps4", "switch"
}

const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"

	// TraderInGame marks a trader who is in-session and can actually trade.
	// Orders from merely online or offline traders are not actionable.
	TraderInGame = "ingame"
)

// Key returns the identity key used for cross-cycle deduplication.
// Quantity is deliberately excluded: a partial fill changes quantity but
// not identity, and must not re-trigger an alert.
func (o Order) Key() OrderKey {
	return OrderKey{Trader: o.Trader, Platinum: o.Platinum}
}

// OrderKey identifies an order across polling cycles.
type OrderKey struct {
	Trader   string
	Platinum int64
}

// OrderSnapshot is the full order book for one item at one point in time.
// Buyers are sorted price-descending (best bid first) and sellers
// price-ascending (best ask first); index 0 is the most attractive order.
type OrderSnapshot struct {
	ItemID  string
	Buyers  []Order
	Sellers []Order
}

// BuildSnapshot partitions orders by type and sorts each side.
// The sort is stable so arrival order breaks price ties.
func BuildSnapshot(itemID string, orders []Order) *OrderSnapshot {
	snap := &OrderSnapshot{ItemID: itemID}
	for _, o := range orders {
		switch o.Type {
		case OrderTypeBuy:
			snap.Buyers = append(snap.Buyers, o)
		case OrderTypeSell:
			snap.Sellers = append(snap.Sellers, o)
		}
	}
	sort.SliceStable(snap.Buyers, func(i, j int) bool {
		return snap.Buyers[i].Platinum > snap.Buyers[j].Platinum
	})
	sort.SliceStable(snap.Sellers, func(i, j int) bool {
		return snap.Sellers[i].Platinum < snap.Sellers[j].Platinum
	})
	return snap
}

// BestBid returns the highest buy order, or nil if there are no buyers.
func (s *OrderSnapshot) BestBid() *Order {
	if len(s.Buyers) == 0 {
		return nil
	}
	return &s.Buyers[0]
}

// BestAsk returns the lowest sell order, or nil if there are no sellers.
func (s *OrderSnapshot) BestAsk() *Order {
	if len(s.Sellers) == 0 {
		return nil
	}
	return &s.Sellers[0]
}
