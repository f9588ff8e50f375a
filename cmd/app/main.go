package main

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/disintegration/imaging"

	"goldview/internal/app"
	"goldview/internal/domain"
	"goldview/internal/engine"
	"goldview/internal/event"
	"goldview/internal/infra"
	"goldview/internal/infra/binance"
	"goldview/internal/render"
	"goldview/internal/scheduler"
	"goldview/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

const bookPanelWidth = 320

func main() {
	// 1. Debug server: pprof plus the latest frame and metrics.
	frames := &app.FrameBuffer{}
	http.Handle("/frame.png", frames)
	http.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(infra.GlobalMetrics.Snapshot())
	})
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Debug server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Debug server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Restore the persisted selection, fall back to config defaults.
	defInterval, _ := domain.ParseInterval(cfg.View.DefaultInterval)
	symbol, interval := bootstrap.Storage.LoadSelection(cfg.View.DefaultSymbol, defInterval)

	capacity := cfg.View.SeriesCapacity
	if capacity <= 0 {
		capacity = domain.DefaultSeriesCapacity
	}
	view := domain.NewMarketView(symbol, interval, capacity,
		cfg.Chart.Width, cfg.Chart.Height, cfg.Account.Balance)

	// 5. Renderers and the view loop (The Hotpath Loop)
	chart := &render.Chart{SMAPeriod: cfg.View.SMAPeriod}
	bookPanel := &render.BookPanel{}
	client := binance.NewClient(cfg)

	var loop *engine.ViewLoop
	var worker *binance.KlineWorker

	hooks := engine.Hooks{
		Render: func(v domain.MarketView) {
			frames.Store(chart.Render(v))
		},
		SelectionChanged: func(sym string, iv domain.Interval) {
			if err := bootstrap.Storage.SaveSelection(sym, iv); err != nil {
				slog.Warn("Failed to persist selection", slog.Any("error", err))
			}
			worker.Subscribe(sym, iv)
			go func() {
				_ = service.LoadSeries(ctx, client, loop.Inbox(), sym, iv, capacity)
			}()
		},
		Export: func(v domain.MarketView) {
			frame := composeFrame(chart, bookPanel, v)
			exp, err := bootstrap.Exporter.Save(frame, v.Symbol, v.Interval)
			if err != nil {
				slog.Error("Snapshot export failed", slog.Any("error", err))
				return
			}
			if err := bootstrap.Storage.RecordExport(&exp); err != nil {
				slog.Warn("Failed to record export", slog.Any("error", err))
			}
			slog.Info("📸 Snapshot exported", slog.String("path", exp.Path))
		},
	}
	loop = engine.NewViewLoop(1024, view, hooks)

	// Control surface shares the debug listener: selection, hover,
	// resize, paper orders, watch list toggles and the export log.
	app.NewControl(loop.Inbox(), bootstrap.Storage).Register(http.DefaultServeMux)

	event.Warmup()
	go loop.Run(ctx)
	slog.InfoContext(ctx, "✅ View loop (Hotpath) started")

	// 6. REST pollers and the kline stream worker
	go func() {
		_ = service.LoadSeries(ctx, client, loop.Inbox(), symbol, interval, capacity)
	}()

	favorites := func() map[string]bool {
		favs, err := bootstrap.Storage.FavoriteSet()
		if err != nil {
			slog.Warn("Failed to load favorites", slog.Any("error", err))
			return nil
		}
		return favs
	}
	tickerPoller := service.NewTickerPoller(client, loop.Inbox(),
		cfg.Poll.TickersIntervalSec, cfg.API.Binance.QuoteAsset, cfg.API.Binance.BoardSize, favorites)
	if err := tickerPoller.Start(ctx); err != nil {
		slog.Error("Failed to start ticker poller", slog.Any("error", err))
	}
	defer tickerPoller.Stop()

	bookPoller := service.NewBookPoller(client, loop.Inbox(),
		cfg.Poll.BookIntervalMS, cfg.API.Binance.BookDepth, loop.Selection)
	if err := bookPoller.Start(ctx); err != nil {
		slog.Error("Failed to start book poller", slog.Any("error", err))
	}
	defer bookPoller.Stop()

	worker = binance.NewKlineWorker(cfg.API.Binance.WSURL, symbol, interval, loop.Inbox())
	if err := worker.Connect(ctx); err != nil {
		slog.Error("Failed to connect kline stream", slog.Any("error", err))
	}
	defer worker.Disconnect()
	slog.InfoContext(ctx, "✅ KlineWorker started",
		slog.String("symbol", symbol), slog.String("interval", string(interval)))

	// 7. Timed snapshot exports
	sched := scheduler.NewScheduler(loop.Inbox())
	if cfg.Export.Schedule != "" {
		if err := sched.RegisterExport(cfg.Export.Schedule); err != nil {
			slog.Error("Failed to register export schedule", slog.Any("error", err))
		} else {
			sched.Start()
			defer sched.Stop()
		}
	}

	slog.InfoContext(ctx, "✨ GoldView fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}

// composeFrame lays the chart and the order-book panel side by side.
func composeFrame(chart *render.Chart, panel *render.BookPanel, v domain.MarketView) *image.NRGBA {
	chartImg := chart.Render(v)
	bookImg := panel.Render(v.Book, v.Top, bookPanelWidth, v.Height)

	frame := imaging.New(v.Width+bookPanelWidth, v.Height, color.Transparent)
	frame = imaging.Paste(frame, chartImg, image.Pt(0, 0))
	frame = imaging.Paste(frame, bookImg, image.Pt(v.Width, 0))
	return frame
}
