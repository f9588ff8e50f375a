package domain

import "time"

// WatchItem marks an instrument the user follows on the board.
type WatchItem struct {
	Symbol     string    `gorm:"primaryKey" json:"symbol"`
	IsFavorite bool      `json:"is_favorite" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ViewSetting persists user view state across restarts (Key-Value),
// e.g. the last selected symbol and granularity.
type ViewSetting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known ViewSetting keys.
const (
	SettingSymbol   = "view.symbol"
	SettingInterval = "view.interval"
)

// ChartExport records one rendered snapshot written to disk.
type ChartExport struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Symbol    string    `json:"symbol" gorm:"index"`
	Interval  string    `json:"interval"`
	Path      string    `json:"path"`
	ThumbPath string    `json:"thumb_path"`
	CreatedAt time.Time `json:"created_at"`
}
