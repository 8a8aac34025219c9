package infra

import "github.com/shopspring/decimal"

// Wire types for the warframe.market v1 API.

// catalogResponse wraps GET /items. Items are keyed by locale.
type catalogResponse struct {
	Payload struct {
		Items map[string][]catalogItem `json:"items"`
	} `json:"payload"`
}

type catalogItem struct {
	ID       string `json:"id"`
	URLName  string `json:"url_name"`
	ItemName string `json:"item_name"`
	Thumb    string `json:"thumb"`
}

// statisticsResponse wraps GET /items/{id}/statistics.
type statisticsResponse struct {
	Payload struct {
		Statistics struct {
			NinetyDays []dayRecord `json:"90days"`
		} `json:"statistics"`
	} `json:"payload"`
}

// dayRecord carries the seven price metrics plus volume for one day.
type dayRecord struct {
	Datetime    string          `json:"datetime"`
	OpenPrice   decimal.Decimal `json:"open_price"`
	ClosedPrice decimal.Decimal `json:"closed_price"`
	MovingAvg   decimal.Decimal `json:"moving_avg"`
	Median      decimal.Decimal `json:"median"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	Volume      decimal.Decimal `json:"volume"`
}

// ordersResponse wraps GET /items/{id}/orders.
type ordersResponse struct {
	Payload struct {
		Orders []orderEntry `json:"orders"`
	} `json:"payload"`
}

type orderEntry struct {
	OrderType string  `json:"order_type"`
	Platinum  float64 `json:"platinum"` // Integer in practice, float on the wire
	Quantity  int64   `json:"quantity"`
	Platform  string  `json:"platform"`
	User      struct {
		IngameName string `json:"ingame_name"`
		Status     string `json:"status"`
	} `json:"user"`
}
