package domain

import "context"

// CatalogFetcher fetches the full item catalog from the remote service.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) ([]ItemInfo, error)
}

// StatsFetcher fetches the day-indexed 90-day statistics for one item.
type StatsFetcher interface {
	FetchStatistics(ctx context.Context, itemID string) ([]DayStat, error)
}

// OrderFetcher fetches the current filtered, sorted order book for one item.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, itemID string) (*OrderSnapshot, error)
}

// AlertSink receives qualifying alerts. Delivery is serialized by the
// watcher's dispatch goroutine, so implementations need not be thread-safe.
type AlertSink interface {
	Deliver(ctx context.Context, alert Alert) error
}
