package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"platwatch/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists the two slow-changing caches: the item catalog and the
// historical statistics series. Both are read-if-present, else rebuilt.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. A store that fails to
// open or migrate is treated as corrupt: it is removed and rebuilt once.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	db, err := open(dbPath)
	if err != nil {
		slog.Warn("Discarding corrupt cache store",
			slog.String("path", dbPath),
			slog.Any("error", &domain.CacheError{Store: "catalog", Err: err}),
		)
		if rmErr := os.Remove(dbPath); rmErr != nil {
			return nil, fmt.Errorf("failed to remove corrupt store: %w", rmErr)
		}
		db, err = open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild store: %w", err)
		}
	}

	return &Storage{db: db}, nil
}

func open(dbPath string) (*gorm.DB, error) {
	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.ItemInfo{}, &domain.StatSeries{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Platwatch", "data", "platwatch.db"), nil
}

// ======================================================================================
// Catalog Operations
// ======================================================================================

// SaveItems stores the full catalog in one transaction.
func (s *Storage) SaveItems(items []domain.ItemInfo) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAllItems retrieves the persisted catalog, possibly empty.
func (s *Storage) GetAllItems() ([]domain.ItemInfo, error) {
	var items []domain.ItemInfo
	err := s.db.Find(&items).Error
	return items, err
}

// GetItem retrieves catalog metadata by identifier
func (s *Storage) GetItem(id string) (*domain.ItemInfo, error) {
	var item domain.ItemInfo
	err := s.db.First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &item, err
}

// UpdateThumbPath records the local thumbnail path for an item
func (s *Storage) UpdateThumbPath(id, path string) error {
	return s.db.Model(&domain.ItemInfo{}).Where("id = ?", id).Update("thumb_path", path).Error
}

// ResetCatalog drops all persisted catalog rows.
func (s *Storage) ResetCatalog() error {
	return s.db.Where("1 = 1").Delete(&domain.ItemInfo{}).Error
}

// ======================================================================================
// Statistics Operations
// ======================================================================================

// SaveStats persists the complete stats mapping. Called once after the warm
// finishes; partial progress is never written.
func (s *Storage) SaveStats(stats map[string]*domain.HistoricalStats) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, hs := range stats {
			for metric, samples := range hs.Series {
				encoded, err := json.Marshal(samples)
				if err != nil {
					return err
				}
				row := domain.StatSeries{
					ItemID:  hs.ItemID,
					Metric:  metric,
					Samples: string(encoded),
				}
				if err := tx.Save(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadStats reads every persisted series, regrouped per item. A row that
// fails to parse marks the whole store corrupt.
func (s *Storage) LoadStats() (map[string]*domain.HistoricalStats, error) {
	var rows []domain.StatSeries
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]*domain.HistoricalStats)
	for _, row := range rows {
		var samples []decimal.Decimal
		if err := json.Unmarshal([]byte(row.Samples), &samples); err != nil {
			return nil, &domain.CacheError{Store: "stats", Err: err}
		}
		hs, ok := result[row.ItemID]
		if !ok {
			hs = &domain.HistoricalStats{
				ItemID: row.ItemID,
				Series: make(map[string][]decimal.Decimal, len(domain.Metrics)),
			}
			result[row.ItemID] = hs
		}
		hs.Series[row.Metric] = samples
	}
	return result, nil
}

// ResetStats drops all persisted statistics rows.
func (s *Storage) ResetStats() error {
	return s.db.Where("1 = 1").Delete(&domain.StatSeries{}).Error
}
