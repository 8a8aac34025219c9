package service

import (
	"context"
	"log/slog"
	"sync"

	"platwatch/internal/domain"
)

// CatalogStore is the persistence seam for the item catalog.
type CatalogStore interface {
	GetAllItems() ([]domain.ItemInfo, error)
	SaveItems(items []domain.ItemInfo) error
	ResetCatalog() error
}

// Catalog resolves item identifiers to display names. Loaded once from the
// local store, falling back to a full remote catalog fetch, then pure
// in-memory reads for the process lifetime.
type Catalog struct {
	store CatalogStore
	fetch domain.CatalogFetcher

	mu     sync.RWMutex
	items  map[string]domain.ItemInfo
	loaded bool
}

// NewCatalog creates a catalog backed by store with fetch as fallback.
func NewCatalog(store CatalogStore, fetch domain.CatalogFetcher) *Catalog {
	return &Catalog{
		store: store,
		fetch: fetch,
	}
}

// EnsureLoaded populates the whole catalog, preferring the local store.
// An unreadable store is discarded and rebuilt from the remote service.
func (c *Catalog) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	items, err := c.store.GetAllItems()
	if err != nil {
		slog.Warn("Discarding unreadable catalog cache",
			slog.Any("error", &domain.CacheError{Store: "catalog", Err: err}))
		if resetErr := c.store.ResetCatalog(); resetErr != nil {
			slog.Warn("Catalog cache reset failed", slog.Any("error", resetErr))
		}
		items = nil
	}

	if len(items) == 0 {
		items, err = c.fetch.FetchCatalog(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrCatalogEmpty
		}
		if err := c.store.SaveItems(items); err != nil {
			// The in-memory catalog still works; only restart warm-up suffers.
			slog.Warn("Failed to persist catalog", slog.Any("error", err))
		}
		slog.Info("Catalog fetched from remote", slog.Int("items", len(items)))
	} else {
		slog.Info("Catalog loaded from local cache", slog.Int("items", len(items)))
	}

	c.items = make(map[string]domain.ItemInfo, len(items))
	for _, it := range items {
		c.items[it.ID] = it
	}
	c.loaded = true
	return nil
}

// Resolve returns the display name for an identifier. A miss against a
// fully loaded catalog is a configuration error, never a skip.
func (c *Catalog) Resolve(id string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return "", domain.ErrCatalogNotLoaded
	}
	item, ok := c.items[id]
	if !ok {
		return "", &domain.UnknownItemError{ID: id}
	}
	return item.Name, nil
}

// Item returns the full catalog entry for an identifier.
func (c *Catalog) Item(id string) (domain.ItemInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	return item, ok
}

// Len returns the number of loaded catalog entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
