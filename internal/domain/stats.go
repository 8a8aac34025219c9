package domain

import "github.com/shopspring/decimal"

// Recognized historical metrics, one sample per day, oldest-first.
const (
	MetricOpenPrice   = "open_price"
	MetricClosedPrice = "closed_price"
	MetricMovingAvg   = "moving_avg"
	MetricMedian      = "median"
	MetricAvgPrice    = "avg_price"
	MetricMinPrice    = "min_price"
	MetricMaxPrice    = "max_price"
	MetricVolume      = "volume"
)

// Metrics lists every recognized metric name in canonical order.
var Metrics = []string{
	MetricOpenPrice,
	MetricClosedPrice,
	MetricMovingAvg,
	MetricMedian,
	MetricAvgPrice,
	MetricMinPrice,
	MetricMaxPrice,
	MetricVolume,
}

// DayStat is one day-indexed record from the statistics endpoint.
type DayStat struct {
	Date        string
	OpenPrice   decimal.Decimal
	ClosedPrice decimal.Decimal
	MovingAvg   decimal.Decimal
	Median      decimal.Decimal
	AvgPrice    decimal.Decimal
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
	Volume      decimal.Decimal
}

// HistoricalStats holds the 90-day series for one item, regrouped
// column-wise: one ordered sample sequence per metric. Built once per
// identifier and immutable afterward.
type HistoricalStats struct {
	ItemID string
	Series map[string][]decimal.Decimal
}

// RegroupStats converts day-indexed records into per-metric columns.
func RegroupStats(itemID string, days []DayStat) *HistoricalStats {
	stats := &HistoricalStats{
		ItemID: itemID,
		Series: make(map[string][]decimal.Decimal, len(Metrics)),
	}
	for _, m := range Metrics {
		stats.Series[m] = make([]decimal.Decimal, 0, len(days))
	}
	for _, d := range days {
		stats.Series[MetricOpenPrice] = append(stats.Series[MetricOpenPrice], d.OpenPrice)
		stats.Series[MetricClosedPrice] = append(stats.Series[MetricClosedPrice], d.ClosedPrice)
		stats.Series[MetricMovingAvg] = append(stats.Series[MetricMovingAvg], d.MovingAvg)
		stats.Series[MetricMedian] = append(stats.Series[MetricMedian], d.Median)
		stats.Series[MetricAvgPrice] = append(stats.Series[MetricAvgPrice], d.AvgPrice)
		stats.Series[MetricMinPrice] = append(stats.Series[MetricMinPrice], d.MinPrice)
		stats.Series[MetricMaxPrice] = append(stats.Series[MetricMaxPrice], d.MaxPrice)
		stats.Series[MetricVolume] = append(stats.Series[MetricVolume], d.Volume)
	}
	return stats
}

// MeanVolume returns the average daily trade volume over the stored window,
// or zero when no volume samples exist.
func (s *HistoricalStats) MeanVolume() decimal.Decimal {
	samples := s.Series[MetricVolume]
	if len(samples) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range samples {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(samples))))
}
