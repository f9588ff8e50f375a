package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"goldview/internal/domain"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Exporter writes rendered frames to disk: a full-size PNG plus a
// Lanczos-resized thumbnail for gallery views.
type Exporter struct {
	dir        string
	thumbWidth int
}

// NewExporter creates the export directory if needed.
func NewExporter(dir string, thumbWidth int) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	if thumbWidth <= 0 {
		thumbWidth = 320
	}
	return &Exporter{dir: dir, thumbWidth: thumbWidth}, nil
}

// Save writes img and its thumbnail, returning the export record to persist.
func (e *Exporter) Save(img *image.NRGBA, symbol string, interval domain.Interval) (domain.ChartExport, error) {
	id := uuid.NewString()
	base := fmt.Sprintf("%s_%s_%s", symbol, interval, id[:8])

	path := filepath.Join(e.dir, base+".png")
	if err := imaging.Save(img, path); err != nil {
		return domain.ChartExport{}, fmt.Errorf("failed to save chart: %w", err)
	}

	thumb := imaging.Resize(img, e.thumbWidth, 0, imaging.Lanczos)
	thumbPath := filepath.Join(e.dir, base+"_thumb.png")
	if err := imaging.Save(thumb, thumbPath); err != nil {
		return domain.ChartExport{}, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return domain.ChartExport{
		ID:        id,
		Symbol:    symbol,
		Interval:  interval.String(),
		Path:      path,
		ThumbPath: thumbPath,
		CreatedAt: time.Now(),
	}, nil
}
