package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"platwatch/internal/domain"

	"github.com/shopspring/decimal"
)

// StatsStorage is the persistence seam for the historical statistics cache.
type StatsStorage interface {
	LoadStats() (map[string]*domain.HistoricalStats, error)
	SaveStats(stats map[string]*domain.HistoricalStats) error
	ResetStats() error
}

// StatsStore caches aggregated 90-day metric series per item. Cold-path
// only: polling never depends on it. Missing identifiers are fetched
// sequentially during warm-up and the complete mapping is persisted once at
// the end, so a crash mid-warm requires a full re-warm.
type StatsStore struct {
	store StatsStorage
	fetch domain.StatsFetcher

	mu    sync.RWMutex
	stats map[string]*domain.HistoricalStats
}

// NewStatsStore creates a stats cache backed by store with fetch as fallback.
func NewStatsStore(store StatsStorage, fetch domain.StatsFetcher) *StatsStore {
	return &StatsStore{
		store: store,
		fetch: fetch,
		stats: make(map[string]*domain.HistoricalStats),
	}
}

// EnsureAllLoaded warms the cache for every given identifier. Remote
// failures abort the warm; nothing partial is persisted.
func (s *StatsStore) EnsureAllLoaded(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.store.LoadStats()
	if err != nil {
		slog.Warn("Discarding unreadable stats cache", slog.Any("error", err))
		if resetErr := s.store.ResetStats(); resetErr != nil {
			slog.Warn("Stats cache reset failed", slog.Any("error", resetErr))
		}
		loaded = make(map[string]*domain.HistoricalStats)
	}
	s.stats = loaded

	var missing []string
	for _, id := range ids {
		if _, ok := s.stats[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		slog.Info("Statistics cache already warm", slog.Int("items", len(ids)))
		return nil
	}

	for i, id := range missing {
		slog.Info("Warming statistics",
			slog.String("item", id),
			slog.Int("count", i+1),
			slog.Int("total", len(missing)),
		)
		days, err := s.fetch.FetchStatistics(ctx, id)
		if err != nil {
			return err
		}
		s.stats[id] = domain.RegroupStats(id, days)
	}

	if err := s.store.SaveStats(s.stats); err != nil {
		slog.Warn("Failed to persist statistics", slog.Any("error", err))
	}
	return nil
}

// StatsFor returns the cached series for an identifier.
func (s *StatsStore) StatsFor(id string) (*domain.HistoricalStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[id]
	if !ok {
		return nil, domain.ErrStatsNotLoaded
	}
	return stats, nil
}

// VolumeRank pairs an identifier with its mean daily trade volume.
type VolumeRank struct {
	ItemID     string
	MeanVolume decimal.Decimal
}

// VolumeRanking returns the given identifiers ordered by mean daily volume,
// most traded first. Identifiers without cached stats are skipped.
func (s *StatsStore) VolumeRanking(ids []string) []VolumeRank {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranks := make([]VolumeRank, 0, len(ids))
	for _, id := range ids {
		stats, ok := s.stats[id]
		if !ok {
			continue
		}
		ranks = append(ranks, VolumeRank{ItemID: id, MeanVolume: stats.MeanVolume()})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].MeanVolume.GreaterThan(ranks[j].MeanVolume)
	})
	return ranks
}
