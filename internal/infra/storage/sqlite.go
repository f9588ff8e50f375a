package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"goldview/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists user view state, the watch list and the export log.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens the SQLite database at the per-user default path.
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}
	return Open(dbPath)
}

// Open opens or creates the database at an explicit path.
func Open(dbPath string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure-Go SQLite, no cgo.
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.WatchItem{}, &domain.ViewSetting{}, &domain.ChartExport{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS.
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

	return filepath.Join(configDir, "GoldView", "data", "goldview.db"), nil
}

// ======================================================================================
// Watch list
// ======================================================================================

// UpsertWatch creates or updates a watch list entry.
func (s *Storage) UpsertWatch(item *domain.WatchItem) error {
	return s.db.Save(item).Error
}

// GetWatch retrieves one watch entry; absence is not an error.
func (s *Storage) GetWatch(symbol string) (*domain.WatchItem, error) {
	var item domain.WatchItem
	err := s.db.First(&item, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

// GetAllWatches retrieves the full watch list.
func (s *Storage) GetAllWatches() ([]domain.WatchItem, error) {
	var items []domain.WatchItem
	err := s.db.Find(&items).Error
	return items, err
}

// ToggleFavorite flips the favorite flag, creating the entry if needed,
// and returns the new state.
func (s *Storage) ToggleFavorite(symbol string) (bool, error) {
	item, err := s.GetWatch(symbol)
	if err != nil {
		return false, err
	}
	if item == nil {
		return true, s.UpsertWatch(&domain.WatchItem{Symbol: symbol, IsFavorite: true})
	}

	item.IsFavorite = !item.IsFavorite
	return item.IsFavorite, s.UpsertWatch(item)
}

// FavoriteSet returns the favorited symbols as a lookup set.
func (s *Storage) FavoriteSet() (map[string]bool, error) {
	items, err := s.GetAllWatches()
	if err != nil {
		return nil, err
	}
	favs := make(map[string]bool, len(items))
	for _, it := range items {
		if it.IsFavorite {
			favs[it.Symbol] = true
		}
	}
	return favs, nil
}

// DeleteWatch removes an entry from the watch list.
func (s *Storage) DeleteWatch(symbol string) error {
	return s.db.Where("symbol = ?", symbol).Delete(&domain.WatchItem{}).Error
}

// ======================================================================================
// View settings
// ======================================================================================

// SaveSetting persists one key/value view setting.
func (s *Storage) SaveSetting(key, value string) error {
	setting := domain.ViewSetting{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&setting).Error
}

// LoadSettings loads all view settings as a map.
func (s *Storage) LoadSettings() (map[string]string, error) {
	var settings []domain.ViewSetting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, st := range settings {
		result[st.Key] = st.Value
	}
	return result, nil
}

// SaveSelection persists the (symbol, interval) key as two settings.
func (s *Storage) SaveSelection(symbol string, interval domain.Interval) error {
	if err := s.SaveSetting(domain.SettingSymbol, symbol); err != nil {
		return err
	}
	return s.SaveSetting(domain.SettingInterval, string(interval))
}

// LoadSelection restores the persisted key. Missing or invalid values
// fall back to the provided defaults.
func (s *Storage) LoadSelection(defSymbol string, defInterval domain.Interval) (string, domain.Interval) {
	settings, err := s.LoadSettings()
	if err != nil {
		return defSymbol, defInterval
	}

	symbol := defSymbol
	if v, ok := settings[domain.SettingSymbol]; ok && v != "" {
		symbol = v
	}
	interval := defInterval
	if v, ok := settings[domain.SettingInterval]; ok {
		if iv, err := domain.ParseInterval(v); err == nil {
			interval = iv
		}
	}
	return symbol, interval
}

// ======================================================================================
// Export log
// ======================================================================================

// RecordExport appends one rendered snapshot to the export log.
func (s *Storage) RecordExport(exp *domain.ChartExport) error {
	return s.db.Create(exp).Error
}

// RecentExports returns the newest export records, newest first.
func (s *Storage) RecentExports(limit int) ([]domain.ChartExport, error) {
	var exports []domain.ChartExport
	err := s.db.Order("created_at DESC").Limit(limit).Find(&exports).Error
	return exports, err
}
