package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"platwatch/internal/domain"
)

// MarketClient talks to the marketplace REST API. Every request carries a
// bounded timeout so one unresponsive endpoint cannot stall a whole cycle.
type MarketClient struct {
	baseURL    string
	platform   string
	locale     string
	retries    int
	httpClient *http.Client
}

// NewMarketClient creates a client from the loaded configuration.
func NewMarketClient(cfg *Config) *MarketClient {
	return &MarketClient{
		baseURL:  cfg.API.BaseURL,
		platform: cfg.API.Platform,
		locale:   cfg.API.Locale,
		retries:  cfg.API.Retries,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.API.TimeoutSec) * time.Second,
		},
	}
}

// FetchCatalog fetches the full item catalog for the configured locale.
func (c *MarketClient) FetchCatalog(ctx context.Context) ([]domain.ItemInfo, error) {
	var resp catalogResponse
	if err := c.getJSON(ctx, "catalog", c.baseURL+"/items", &resp); err != nil {
		return nil, err
	}

	entries, ok := resp.Payload.Items[c.locale]
	if !ok || len(entries) == 0 {
		return nil, domain.NewRemoteError("catalog", fmt.Errorf("%w for locale %q", domain.ErrCatalogEmpty, c.locale))
	}

	items := make([]domain.ItemInfo, 0, len(entries))
	for _, e := range entries {
		items = append(items, domain.ItemInfo{
			ID:    e.URLName,
			Name:  e.ItemName,
			Thumb: e.Thumb,
		})
	}
	return items, nil
}

// FetchStatistics fetches the day-indexed 90-day record set for one item.
func (c *MarketClient) FetchStatistics(ctx context.Context, itemID string) ([]domain.DayStat, error) {
	op := "statistics/" + itemID
	var resp statisticsResponse
	if err := c.getJSON(ctx, op, c.baseURL+"/items/"+itemID+"/statistics", &resp); err != nil {
		return nil, err
	}

	days := make([]domain.DayStat, 0, len(resp.Payload.Statistics.NinetyDays))
	for _, d := range resp.Payload.Statistics.NinetyDays {
		days = append(days, domain.DayStat{
			Date:        d.Datetime,
			OpenPrice:   d.OpenPrice,
			ClosedPrice: d.ClosedPrice,
			MovingAvg:   d.MovingAvg,
			Median:      d.Median,
			AvgPrice:    d.AvgPrice,
			MinPrice:    d.MinPrice,
			MaxPrice:    d.MaxPrice,
			Volume:      d.Volume,
		})
	}
	return days, nil
}

// FetchOrders fetches the current order book for one item, keeping only
// orders from in-game traders on the configured platform, partitioned and
// sorted so index 0 is the most attractive order on each side.
func (c *MarketClient) FetchOrders(ctx context.Context, itemID string) (*domain.OrderSnapshot, error) {
	op := "orders/" + itemID
	var resp ordersResponse
	if err := c.getJSON(ctx, op, c.baseURL+"/items/"+itemID+"/orders", &resp); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(resp.Payload.Orders))
	for _, e := range resp.Payload.Orders {
		if e.User.Status != domain.TraderInGame {
			continue
		}
		if e.Platform != c.platform {
			continue
		}
		orders = append(orders, domain.Order{
			Type:     e.OrderType,
			Platinum: int64(e.Platinum),
			Quantity: e.Quantity,
			Trader:   e.User.IngameName,
			Status:   e.User.Status,
			Platform: e.Platform,
		})
	}

	return domain.BuildSnapshot(itemID, orders), nil
}

// getJSON performs a GET with retry and backoff, decoding JSON into v.
func (c *MarketClient) getJSON(ctx context.Context, op, url string, v any) error {
	var lastErr error
	for i := 0; i < c.retries; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			delay := time.Duration(1<<uint(i-1)) * time.Second
			slog.Debug("Retrying marketplace request",
				slog.String("op", op),
				slog.Int("attempt", i),
				slog.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return domain.NewRemoteError(op, ctx.Err())
			case <-time.After(delay):
			}
		}

		err := c.doGet(ctx, url, v)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return domain.NewRemoteError(op, lastErr)
}

func (c *MarketClient) doGet(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	// Browser-like User-Agent to avoid bot detection
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Language", c.locale)
	req.Header.Set("Platform", c.platform)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return err
	}

	return nil
}
