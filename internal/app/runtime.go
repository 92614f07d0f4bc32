// Package app assembles shelf's runtime from configuration: the gateway
// (remote HTTP or the local SQLite catalog), the event log with its ring
// buffer and Prometheus sink, and the /metrics endpoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/shelf/internal/config"
	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/otel"
	"github.com/abelbrown/shelf/internal/store"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runtime owns everything that must be closed on exit.
type Runtime struct {
	Gateway  gateway.Gateway
	Store    *store.Store // nil when a remote gateway is configured
	Events   *otel.Logger
	Ring     *otel.RingBuffer
	Registry *prometheus.Registry

	eventFile *os.File
	server    *http.Server
	logger    *log.Logger
}

// Open builds a Runtime. logger receives diagnostics and may be nil.
func Open(cfg *config.Config, logger *log.Logger) (*Runtime, error) {
	rt := &Runtime{logger: logger}

	gw, st, err := OpenGateway(cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.Gateway, rt.Store = gw, st

	if err := rt.openEvents(cfg.Log.EventLog); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// OpenGateway returns the remote client when a gateway URL is configured,
// otherwise the local catalog. The optional latency jitter wraps either.
func OpenGateway(cfg *config.Config, logger *log.Logger) (gateway.Gateway, *store.Store, error) {
	var (
		gw gateway.Gateway
		st *store.Store
	)

	if cfg.Remote() {
		gw = gateway.NewClient(gateway.ClientConfig{
			BaseURL:    cfg.Gateway.URL,
			Timeout:    cfg.Timeout(),
			Retries:    cfg.Gateway.Retries,
			RatePerSec: cfg.Gateway.RatePerSec,
			Burst:      cfg.Gateway.Burst,
		}, logger)
		if logger != nil {
			logger.Info("using remote catalog", "url", cfg.Gateway.URL)
		}
	} else {
		if cfg.Catalog.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Catalog.Path), 0755); err != nil {
				return nil, nil, fmt.Errorf("create catalog directory: %w", err)
			}
		}
		var err error
		st, err = store.Open(cfg.Catalog.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open catalog: %w", err)
		}
		st.SetPageSize(cfg.Feed.PageSize)
		gw = st
		if logger != nil {
			logger.Info("using local catalog", "path", cfg.Catalog.Path)
		}
	}

	lo, hi := cfg.Latency()
	return gateway.WithLatency(gw, lo, hi), st, nil
}

func (rt *Runtime) openEvents(path string) error {
	rt.Registry = prometheus.NewRegistry()
	rt.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if path == "" {
		rt.Events = otel.NewNullLogger()
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create event log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		rt.eventFile = f
		rt.Events = otel.NewLogger(f)
	}

	rt.Ring = otel.NewRingBuffer(otel.DefaultRingSize)
	rt.Events.SetRingBuffer(rt.Ring)
	rt.Events.SetMetrics(otel.NewMetrics(rt.Registry))
	return nil
}

// Seed loads the demo catalog into the local store and records the outcome
// in the event log.
func (rt *Runtime) Seed(ctx context.Context, perProduct int, now time.Time) (store.SeedResult, error) {
	if rt.Store == nil {
		return store.SeedResult{}, errors.New("seed: no local catalog (a remote gateway is configured)")
	}
	start := time.Now()
	res, err := rt.Store.Seed(ctx, perProduct, now)
	if err != nil {
		rt.Events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindStoreError, Comp: "store", Dur: time.Since(start),
			Err: err.Error(), Msg: "seed"})
		return res, err
	}
	rt.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStoreSeed, Comp: "store", Dur: time.Since(start),
		Count: res.Reviews, Extra: map[string]any{"products": res.Products}})
	return res, nil
}

// MetricsHandler serves the runtime's registry.
func (rt *Runtime) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{})
}

// ServeMetrics exposes /metrics on addr in the background.
func (rt *Runtime) ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.MetricsHandler())
	rt.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := rt.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && rt.logger != nil {
			rt.logger.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
}

// Close stops the metrics server, flushes the event log and closes the
// catalog. Safe to call on a partially opened Runtime.
func (rt *Runtime) Close() {
	if rt.server != nil {
		rt.server.Close()
	}
	rt.Events.Close()
	if rt.eventFile != nil {
		rt.eventFile.Close()
	}
	if rt.Store != nil {
		rt.Store.Close()
	}
}
