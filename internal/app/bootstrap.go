package app

import (
	"context"
	"log/slog"
	"sync"

	"platwatch/internal/domain"
	"platwatch/internal/infra"
	"platwatch/internal/infra/storage"
	"platwatch/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Client     *infra.MarketClient
	Catalog    *service.Catalog
	Stats      *service.StatsStore
	Downloader *infra.ThumbDownloader
	Items      []domain.TrackedItem
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, client)
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping Platwatch...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Cache store initialized")

	// 4. Marketplace client and caches
	b.Client = infra.NewMarketClient(cfg)
	b.Catalog = service.NewCatalog(store, b.Client)
	b.Stats = service.NewStatsStore(store, b.Client)
	b.Items = cfg.TrackedItems()

	// 5. Thumbnail downloader
	downloader, err := infra.NewThumbDownloader()
	if err != nil {
		return err
	}
	b.Downloader = downloader
	slog.Info("✅ Thumbnail downloader ready")

	return nil
}

// Warm runs the cold, one-shot warm-up phase: catalog load, watch-list
// validation and the optional statistics warm. Any failure here is fatal;
// steady-state polling never starts on a bad watch-list.
func (b *Bootstrap) Warm(ctx context.Context) error {
	if err := b.Catalog.EnsureLoaded(ctx); err != nil {
		return err
	}
	slog.Info("✅ Catalog ready", slog.Int("items", b.Catalog.Len()))

	// Every tracked identifier must resolve; a typo fails startup.
	for _, item := range b.Items {
		name, err := b.Catalog.Resolve(item.ID)
		if err != nil {
			return err
		}
		slog.Info("Watching item",
			slog.String("id", item.ID),
			slog.String("name", name),
			slog.Int64("buy_below", item.BuyBelow),
			slog.Int64("sell_above", item.SellAbove),
		)
	}

	if b.Config.Stats.WarmOnStart {
		ids := make([]string, 0, len(b.Items))
		for _, item := range b.Items {
			ids = append(ids, item.ID)
		}
		if err := b.Stats.EnsureAllLoaded(ctx, ids); err != nil {
			return err
		}
		slog.Info("✅ Statistics cache warm")

		for _, rank := range b.Stats.VolumeRanking(ids) {
			slog.Info("Trade volume",
				slog.String("item", rank.ItemID),
				slog.String("mean_daily_volume", rank.MeanVolume.StringFixed(1)),
			)
		}
	}

	return nil
}

// SyncThumbs caches item thumbnails in the background. Best-effort: a
// missing thumbnail never affects watching.
func (b *Bootstrap) SyncThumbs(ctx context.Context) {
	slog.Info("🔄 Starting thumbnail synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, tracked := range b.Items {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			item, ok := b.Catalog.Item(id)
			if !ok {
				return
			}
			if item.ThumbPath != "" {
				return // Already synced on a previous run
			}

			path, err := b.Downloader.DownloadThumb(id, item.Thumb)
			if err != nil {
				slog.Warn("Failed to download thumbnail",
					slog.String("item", id), slog.Any("error", err))
				return
			}
			if err := b.Storage.UpdateThumbPath(id, path); err != nil {
				slog.Warn("Failed to record thumbnail path",
					slog.String("item", id), slog.Any("error", err))
			}
		}(tracked.ID)
	}

	wg.Wait()
	slog.Info("✨ Thumbnail synchronization completed")
}
