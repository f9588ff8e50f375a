// Package app wires configuration, persistence and rendering together
// at startup.
package app

import (
	"log/slog"

	"github.com/joho/godotenv"

	"goldview/internal/infra"
	"goldview/internal/infra/storage"
	"goldview/internal/render"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config   *infra.Config
	Storage  *storage.Storage
	Exporter *render.Exporter
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, export dir).
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping GoldView...")

	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	exporter, err := render.NewExporter(cfg.Export.Dir, cfg.Export.ThumbWidth)
	if err != nil {
		return err
	}
	b.Exporter = exporter
	slog.Info("✅ Export directory ready", slog.String("dir", cfg.Export.Dir))

	return nil
}
