package domain

import (
	"time"
)

// ItemInfo represents catalog metadata for one tradable item.
// Immutable once resolved; persists across restarts via the local cache.
type ItemInfo struct {
	ID        string    `gorm:"primaryKey" json:"id"` // url_name slug
	Name      string    `json:"name"`                 // Display name
	Thumb     string    `json:"thumb"`                // Remote thumbnail asset path
	ThumbPath string    `json:"thumb_path"`           // Local cached thumbnail, if synced
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatSeries is one persisted metric column for one item.
// Samples is a JSON-encoded array of decimal strings, oldest-first.
type StatSeries struct {
	ItemID    string    `gorm:"primaryKey" json:"item_id"`
	Metric    string    `gorm:"primaryKey" json:"metric"`
	Samples   string    `json:"samples"`
	UpdatedAt time.Time `json:"updated_at"`
}
