package app

import (
	"image"
	"image/png"
	"net/http"
	"sync"
)

// FrameBuffer holds the most recent rendered frame. The view loop
// stores into it on every redraw; the debug HTTP endpoint reads it.
type FrameBuffer struct {
	mu    sync.RWMutex
	frame *image.NRGBA
}

// Store replaces the current frame.
func (f *FrameBuffer) Store(img *image.NRGBA) {
	f.mu.Lock()
	f.frame = img
	f.mu.Unlock()
}

// Latest returns the current frame, nil before the first redraw.
func (f *FrameBuffer) Latest() *image.NRGBA {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frame
}

// ServeHTTP writes the latest frame as PNG, 404 before the first one.
func (f *FrameBuffer) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	img := f.Latest()
	if img == nil {
		http.Error(w, "no frame rendered yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, img)
}
