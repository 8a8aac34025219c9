package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"platwatch/internal/domain"
	"platwatch/internal/infra"
)

// scriptedFetcher replays one prepared order list per cycle and item.
type scriptedFetcher struct {
	mu     sync.Mutex
	cycles map[string][][]domain.Order
	calls  map[string]int
	errOn  map[string]bool
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		cycles: make(map[string][][]domain.Order),
		calls:  make(map[string]int),
		errOn:  make(map[string]bool),
	}
}

func (f *scriptedFetcher) FetchOrders(ctx context.Context, itemID string) (*domain.OrderSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.calls[itemID]
	f.calls[itemID] = n + 1

	if f.errOn[itemID] {
		return nil, domain.NewRemoteError("orders/"+itemID, errors.New("timeout"))
	}

	script := f.cycles[itemID]
	var orders []domain.Order
	if n < len(script) {
		orders = script[n]
	} else if len(script) > 0 {
		orders = script[len(script)-1] // Repeat the last cycle
	}
	return domain.BuildSnapshot(itemID, orders), nil
}

// collectSink records every delivered alert.
type collectSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (s *collectSink) Deliver(ctx context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *collectSink) collected() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Alert(nil), s.alerts...)
}

func loadedCatalog(t *testing.T, items ...domain.ItemInfo) *Catalog {
	t.Helper()
	c := NewCatalog(&fakeCatalogStore{items: items}, &fakeCatalogFetcher{})
	if err := c.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("catalog load failed: %v", err)
	}
	return c
}

func drainAlerts(w *Watcher) []domain.Alert {
	var alerts []domain.Alert
	for {
		select {
		case a := <-w.alerts:
			alerts = append(alerts, a)
		default:
			return alerts
		}
	}
}

func TestWatcher_DealScenario(t *testing.T) {
	// Tracked item X with buy_below=50, sell_above=80, followed over 4 cycles.
	fetcher := newScriptedFetcher()
	fetcher.cycles["x"] = [][]domain.Order{
		{sell("A", 45, 1)},                   // Cycle 1: novel and 45 <= 50
		{sell("A", 45, 1)},                   // Cycle 2: already seen
		{sell("A", 45, 7)},                   // Cycle 3: quantity changed, same identity
		{sell("A", 45, 7), buy("B", 85, 1)},  // Cycle 4: novel buyer, 85 >= 80
	}

	w := NewWatcher(
		[]domain.TrackedItem{{ID: "x", BuyBelow: 50, SellAbove: 80}},
		fetcher,
		loadedCatalog(t, domain.ItemInfo{ID: "x", Name: "X"}),
		NewLedger(),
		nil,
		&infra.Metrics{},
		WatcherOptions{Interval: time.Hour, Workers: 2},
	)

	ctx := context.Background()

	w.runCycle(ctx)
	alerts := drainAlerts(w)
	if len(alerts) != 1 || alerts[0].Order.Trader != "A" {
		t.Fatalf("Cycle 1: expected one alert for A, got %+v", alerts)
	}
	if alerts[0].ItemName != "X" {
		t.Errorf("Cycle 1: alert should carry the display name, got %q", alerts[0].ItemName)
	}

	w.runCycle(ctx)
	if alerts := drainAlerts(w); len(alerts) != 0 {
		t.Fatalf("Cycle 2: expected no alerts for an unchanged order, got %+v", alerts)
	}

	w.runCycle(ctx)
	if alerts := drainAlerts(w); len(alerts) != 0 {
		t.Fatalf("Cycle 3: a partial fill must not re-alert, got %+v", alerts)
	}

	w.runCycle(ctx)
	alerts = drainAlerts(w)
	if len(alerts) != 1 || alerts[0].Order.Trader != "B" {
		t.Fatalf("Cycle 4: expected one alert for B, got %+v", alerts)
	}
}

func TestWatcher_FetchErrorSkipsItemOnly(t *testing.T) {
	fetcher := newScriptedFetcher()
	fetcher.cycles["healthy"] = [][]domain.Order{{sell("A", 10, 1)}}
	fetcher.errOn["broken"] = true

	ledger := NewLedger()
	metrics := &infra.Metrics{}
	w := NewWatcher(
		[]domain.TrackedItem{
			{ID: "broken", BuyBelow: 50},
			{ID: "healthy", BuyBelow: 50},
		},
		fetcher,
		loadedCatalog(t,
			domain.ItemInfo{ID: "broken", Name: "Broken"},
			domain.ItemInfo{ID: "healthy", Name: "Healthy"},
		),
		ledger,
		nil,
		metrics,
		WatcherOptions{Interval: time.Hour, Workers: 1},
	)

	w.runCycle(context.Background())

	alerts := drainAlerts(w)
	if len(alerts) != 1 || alerts[0].ItemID != "healthy" {
		t.Fatalf("The healthy item must still alert, got %+v", alerts)
	}
	if ledger.Snapshot("broken") != nil {
		t.Error("A failed fetch must leave the ledger entry unchanged")
	}
	if snap := metrics.Snapshot(); snap.PollErrors != 1 {
		t.Errorf("Expected 1 recorded poll error, got %d", snap.PollErrors)
	}

	// Next cycle the endpoint recovers and its orders are novel
	fetcher.mu.Lock()
	fetcher.errOn["broken"] = false
	fetcher.cycles["broken"] = [][]domain.Order{{sell("C", 30, 1)}}
	fetcher.mu.Unlock()

	w.runCycle(context.Background())
	alerts = drainAlerts(w)
	if len(alerts) != 1 || alerts[0].ItemID != "broken" {
		t.Fatalf("Recovered item should alert on its backlog, got %+v", alerts)
	}
}

func TestWatcher_RunDeliversThroughSinks(t *testing.T) {
	fetcher := newScriptedFetcher()
	fetcher.cycles["x"] = [][]domain.Order{{sell("A", 45, 1)}}

	sink := &collectSink{}
	w := NewWatcher(
		[]domain.TrackedItem{{ID: "x", BuyBelow: 50}},
		fetcher,
		loadedCatalog(t, domain.ItemInfo{ID: "x", Name: "X"}),
		NewLedger(),
		[]domain.AlertSink{sink},
		&infra.Metrics{},
		WatcherOptions{Interval: time.Hour, Workers: 1},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(sink.collected()) == 0 {
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for alert delivery")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	alerts := sink.collected()
	if alerts[0].Order.Trader != "A" {
		t.Errorf("Unexpected delivered alert: %+v", alerts[0])
	}
}

func TestWatcher_CancelledCycleFetchesNothing(t *testing.T) {
	fetcher := newScriptedFetcher()
	fetcher.cycles["x"] = [][]domain.Order{{sell("A", 45, 1)}}

	w := NewWatcher(
		[]domain.TrackedItem{{ID: "x", BuyBelow: 50}},
		fetcher,
		loadedCatalog(t, domain.ItemInfo{ID: "x", Name: "X"}),
		NewLedger(),
		nil,
		&infra.Metrics{},
		WatcherOptions{Interval: time.Hour, Workers: 1},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.runCycle(ctx)

	fetcher.mu.Lock()
	calls := fetcher.calls["x"]
	fetcher.mu.Unlock()
	if calls != 0 {
		t.Errorf("Cancelled cycle must not fetch, got %d calls", calls)
	}
}
