package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	cyclesTotal   atomic.Uint64
	pollsTotal    atomic.Uint64
	pollErrors    atomic.Uint64
	ordersFetched atomic.Uint64
	novelOrders   atomic.Uint64
	alertsEmitted atomic.Uint64

	// Gauges
	lastCycleNs atomic.Int64
	wsClients   atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCycle records one completed polling cycle with its duration.
func (m *Metrics) RecordCycle(d time.Duration) {
	m.cyclesTotal.Add(1)
	m.lastCycleNs.Store(d.Nanoseconds())
}

// RecordPoll records one per-item order-book fetch and its order count.
func (m *Metrics) RecordPoll(orders int) {
	m.pollsTotal.Add(1)
	m.ordersFetched.Add(uint64(orders))
}

// RecordPollError records a failed per-item fetch.
func (m *Metrics) RecordPollError() {
	m.pollErrors.Add(1)
}

// RecordNovelOrders records how many orders were classified as novel.
func (m *Metrics) RecordNovelOrders(n int) {
	m.novelOrders.Add(uint64(n))
}

// RecordAlert records one emitted alert.
func (m *Metrics) RecordAlert() {
	m.alertsEmitted.Add(1)
}

// IncrementWSClients increments connected websocket subscribers by 1.
func (m *Metrics) IncrementWSClients() {
	m.wsClients.Add(1)
}

// DecrementWSClients decrements connected websocket subscribers by 1.
func (m *Metrics) DecrementWSClients() {
	m.wsClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	CyclesTotal   uint64
	PollsTotal    uint64
	PollErrors    uint64
	OrdersFetched uint64
	NovelOrders   uint64
	AlertsEmitted uint64
	LastCycle     time.Duration
	WSClients     int32
	Timestamp     time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CyclesTotal:   m.cyclesTotal.Load(),
		PollsTotal:    m.pollsTotal.Load(),
		PollErrors:    m.pollErrors.Load(),
		OrdersFetched: m.ordersFetched.Load(),
		NovelOrders:   m.novelOrders.Load(),
		AlertsEmitted: m.alertsEmitted.Load(),
		LastCycle:     time.Duration(m.lastCycleNs.Load()),
		WSClients:     m.wsClients.Load(),
		Timestamp:     time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.cyclesTotal.Store(0)
	m.pollsTotal.Store(0)
	m.pollErrors.Store(0)
	m.ordersFetched.Store(0)
	m.novelOrders.Store(0)
	m.alertsEmitted.Store(0)
	m.lastCycleNs.Store(0)
	m.wsClients.Store(0)
}
