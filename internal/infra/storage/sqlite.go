package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"stock_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists fetched price series between runs so the provider is
// only hit once per ticker.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}
	return open(dbPath)
}

// NewStorageAt opens (or creates) the database at an explicit path.
func NewStorageAt(dbPath string) (*Storage, error) {
	return open(dbPath)
}

func open(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.PriceBar{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
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

	return filepath.Join(configDir, "StockGo", "data", "series.db"), nil
}

// LoadSeries retrieves all cached records for a ticker, most recent
// first. Returns (nil, nil) when the ticker has never been cached.
func (s *Storage) LoadSeries(ticker string) ([]domain.PriceRecord, error) {
	var bars []domain.PriceBar
	err := s.db.Where("ticker = ?", ticker).Order("date DESC").Find(&bars).Error
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil // Not cached is not an error
	}

	records := make([]domain.PriceRecord, len(bars))
	for i := range bars {
		records[i] = bars[i].Record()
	}
	return records, nil
}

// SaveSeries replaces the cached history for a ticker with a freshly
// fetched one.
func (s *Storage) SaveSeries(ticker string, records []domain.PriceRecord) error {
	bars := make([]domain.PriceBar, len(records))
	for i, r := range records {
		bars[i] = domain.NewPriceBar(ticker, r)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticker = ?", ticker).Delete(&domain.PriceBar{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(bars, 500).Error
	})
}

// DeleteSeries removes a ticker's cached history.
func (s *Storage) DeleteSeries(ticker string) error {
	return s.db.Where("ticker = ?", ticker).Delete(&domain.PriceBar{}).Error
}
