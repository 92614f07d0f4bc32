// Command shelf is the storefront browser TUI: search products as you
// type, read their reviews and compare review statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/abelbrown/shelf/internal/app"
	"github.com/abelbrown/shelf/internal/config"
	"github.com/abelbrown/shelf/internal/logging"
	"github.com/abelbrown/shelf/internal/otel"
	"github.com/abelbrown/shelf/internal/search"
	"github.com/abelbrown/shelf/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", config.Path(), "config file")
	query := flag.String("q", "", "initial search query")
	seed := flag.Bool("seed", false, "seed the local catalog with demo data before starting")
	flag.Parse()

	config.LoadDotEnv("")
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()
	logger := logging.WithPrefix("main")

	rt, err := app.Open(cfg, logging.WithPrefix("gateway"))
	if err != nil {
		fatal("Failed to start: %v", err)
	}
	defer rt.Close()

	if *seed && rt.Store != nil {
		res, err := rt.Seed(context.Background(), 40, time.Now())
		if err != nil {
			fatal("Failed to seed catalog: %v", err)
		}
		logger.Info("catalog seeded", "products", res.Products, "reviews", res.Reviews)
	}

	if cfg.MetricsAddr != "" {
		rt.ServeMetrics(cfg.MetricsAddr)
		logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	rt.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "main",
		Extra: map[string]any{"remote": cfg.Remote(), "debounce_ms": cfg.Search.DebounceMs}})

	model := ui.NewAppWithConfig(ui.AppConfig{
		Gateway: rt.Gateway,
		Search: search.Options{
			Debounce:   cfg.Debounce(),
			MinChars:   cfg.Search.MinChars,
			MaxResults: cfg.Search.MaxResults,
		},
		InitialQuery: *query,
		Obs:          ui.ObsConfig{Logger: rt.Events, Ring: rt.Ring},
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)

	logger.Info("starting UI")
	if _, err := p.Run(); err != nil {
		logger.Error("application error", "err", err)
		rt.Events.Error(otel.KindError, "main", err)
		rt.Close()
		fatal("Error: %v", err)
	}

	rt.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main"})
	logger.Info("exiting normally")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
