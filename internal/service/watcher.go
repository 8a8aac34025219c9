package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"platwatch/internal/domain"
	"platwatch/internal/infra"
)

// WatcherOptions configures the polling loop.
type WatcherOptions struct {
	Interval time.Duration // Sleep between cycles
	Workers  int           // Bounded pool size for per-item fetches
}

// Watcher drives the poll cycle over the watch-list: fetch, classify,
// evaluate, ledger update, one item fully processed per worker at a time.
// Alerts from all workers are funneled through a single dispatch goroutine
// so sink output never interleaves.
type Watcher struct {
	items   []domain.TrackedItem
	fetcher domain.OrderFetcher
	catalog *Catalog
	ledger  *Ledger
	sinks   []domain.AlertSink
	metrics *infra.Metrics
	opts    WatcherOptions

	alerts chan domain.Alert
}

// NewWatcher creates a watcher over the validated watch-list.
func NewWatcher(items []domain.TrackedItem, fetcher domain.OrderFetcher, catalog *Catalog, ledger *Ledger, sinks []domain.AlertSink, metrics *infra.Metrics, opts WatcherOptions) *Watcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Watcher{
		items:   items,
		fetcher: fetcher,
		catalog: catalog,
		ledger:  ledger,
		sinks:   sinks,
		metrics: metrics,
		opts:    opts,
		alerts:  make(chan domain.Alert, 256),
	}
}

// Run polls until ctx is cancelled. The first cycle starts immediately;
// subsequent cycles run on a fixed interval. Cancellation is honored
// between items and during the inter-cycle sleep, never mid-fetch.
func (w *Watcher) Run(ctx context.Context) {
	var dispatchWG sync.WaitGroup
	dispatchWG.Add(1)
	go func() {
		defer dispatchWG.Done()
		w.dispatch(ctx)
	}()

	slog.Info("Watch loop started",
		slog.Int("items", len(w.items)),
		slog.Int("workers", w.opts.Workers),
		slog.Duration("interval", w.opts.Interval),
	)

	w.runCycle(ctx)

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch loop stopped")
			dispatchWG.Wait()
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle makes one pass over the watch-list through the worker pool.
func (w *Watcher) runCycle(ctx context.Context) {
	start := time.Now()

	jobs := make(chan domain.TrackedItem)
	var wg sync.WaitGroup

	workers := min(w.opts.Workers, len(w.items))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if ctx.Err() != nil {
					continue // Drain without fetching on shutdown
				}
				w.processItem(ctx, item)
			}
		}()
	}

feed:
	for _, item := range w.items {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- item:
		}
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	w.metrics.RecordCycle(elapsed)
	slog.Debug("Cycle complete",
		slog.Duration("elapsed", elapsed),
		slog.Int("items", len(w.items)),
	)
}

// processItem runs fetch, classify, evaluate and ledger update for one item.
// A remote failure skips the item for this cycle and leaves its ledger
// snapshot unchanged; monitoring of the other items continues.
func (w *Watcher) processItem(ctx context.Context, item domain.TrackedItem) {
	snap, err := w.fetcher.FetchOrders(ctx, item.ID)
	if err != nil {
		w.metrics.RecordPollError()
		slog.Warn("Order fetch failed; skipping item this cycle",
			slog.String("item", item.ID),
			slog.Any("error", err),
		)
		return
	}
	w.metrics.RecordPoll(len(snap.Buyers) + len(snap.Sellers))

	novelBuyers, novelSellers := w.ledger.ClassifyAndUpdate(item.ID, snap)
	w.metrics.RecordNovelOrders(len(novelBuyers) + len(novelSellers))

	name, err := w.catalog.Resolve(item.ID)
	if err != nil {
		// The watch-list was validated at startup; fall back rather than drop.
		name = item.ID
	}

	for _, alert := range item.Evaluate(name, novelBuyers, novelSellers) {
		select {
		case <-ctx.Done():
			return
		case w.alerts <- alert:
		}
	}
}

// dispatch serializes alert delivery across all sinks.
func (w *Watcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-w.alerts:
			w.metrics.RecordAlert()
			for _, sink := range w.sinks {
				if err := sink.Deliver(ctx, alert); err != nil {
					slog.Error("Alert delivery failed",
						slog.String("alert", alert.ID),
						slog.String("item", alert.ItemID),
						slog.Any("error", err),
					)
				}
			}
		}
	}
}
