package service

import (
	"sync"

	"platwatch/internal/domain"
)

// Ledger remembers the previous cycle's order snapshot per item and
// classifies freshly fetched orders as novel or already-seen. It holds the
// only mutable state shared across cycles; a single mutex suffices because
// each identifier is touched by one worker per cycle.
type Ledger struct {
	mu        sync.Mutex
	snapshots map[string]*domain.OrderSnapshot
}

// NewLedger creates an empty ledger. With no baseline, the first cycle
// classifies every order as novel: the watcher cannot know how long an
// order was already on the board before it started.
func NewLedger() *Ledger {
	return &Ledger{
		snapshots: make(map[string]*domain.OrderSnapshot),
	}
}

// ClassifyAndUpdate returns the orders in snap that were not present, by
// identity key, in the previous snapshot for this item, then replaces the
// stored snapshot wholesale. An order that disappeared and reappeared
// between cycles counts as novel again.
func (l *Ledger) ClassifyAndUpdate(itemID string, snap *domain.OrderSnapshot) (novelBuyers, novelSellers []domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var prevBuyers, prevSellers []domain.Order
	if prev, ok := l.snapshots[itemID]; ok {
		prevBuyers = prev.Buyers
		prevSellers = prev.Sellers
	}

	novelBuyers = filterNovel(prevBuyers, snap.Buyers)
	novelSellers = filterNovel(prevSellers, snap.Sellers)

	// Swap only after classification completes
	l.snapshots[itemID] = snap
	return novelBuyers, novelSellers
}

// Snapshot returns the stored snapshot for an item, or nil before the
// first completed cycle.
func (l *Ledger) Snapshot(itemID string) *domain.OrderSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshots[itemID]
}

// IsNovel reports whether candidate is absent from prev by identity key.
// Pure function so novelty can be tested without a ledger or a loop.
func IsNovel(prev []domain.Order, candidate domain.Order) bool {
	key := candidate.Key()
	for _, o := range prev {
		if o.Key() == key {
			return false
		}
	}
	return true
}

func filterNovel(prev, current []domain.Order) []domain.Order {
	if len(current) == 0 {
		return nil
	}
	seen := make(map[domain.OrderKey]bool, len(prev))
	for _, o := range prev {
		seen[o.Key()] = true
	}
	var novel []domain.Order
	for _, o := range current {
		if !seen[o.Key()] {
			novel = append(novel, o)
		}
	}
	return novel
}
