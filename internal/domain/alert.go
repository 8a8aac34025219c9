package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrackedItem is the user's intent to be alerted on one item.
// Loaded once at startup, immutable for the process lifetime.
type TrackedItem struct {
	ID        string // Marketplace url_name slug
	BuyBelow  int64  // Alert on sell orders priced at or below this (0 disables)
	SellAbove int64  // Alert on buy orders priced at or above this (0 disables)
}

// Alert is a transient notification for one qualifying novel order.
type Alert struct {
	ID       string    `json:"id"`
	ItemID   string    `json:"item_id"`
	ItemName string    `json:"item_name"`
	Order    Order     `json:"order"`
	At       time.Time `json:"at"`
}

// Evaluate applies the item's thresholds to the novel orders from one cycle.
// A novel sell order is a deal iff price <= BuyBelow (you can buy below your
// ceiling); a novel buy order is a deal iff price >= SellAbove (you can sell
// above your floor). Both bounds are inclusive. Non-qualifying orders are
// dropped silently.
func (t TrackedItem) Evaluate(itemName string, novelBuyers, novelSellers []Order) []Alert {
	var alerts []Alert
	now := time.Now()
	for _, o := range novelSellers {
		if t.BuyBelow > 0 && o.Platinum <= t.BuyBelow {
			alerts = append(alerts, newAlert(t.ID, itemName, o, now))
		}
	}
	for _, o := range novelBuyers {
		if t.SellAbove > 0 && o.Platinum >= t.SellAbove {
			alerts = append(alerts, newAlert(t.ID, itemName, o, now))
		}
	}
	return alerts
}

func newAlert(itemID, itemName string, o Order, at time.Time) Alert {
	return Alert{
		ID:       uuid.NewString(),
		ItemID:   itemID,
		ItemName: itemName,
		Order:    o,
		At:       at,
	}
}
