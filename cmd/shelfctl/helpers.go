package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/abelbrown/shelf/internal/app"
	"github.com/abelbrown/shelf/internal/config"
	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/logging"
	"github.com/abelbrown/shelf/internal/store"
	"github.com/charmbracelet/log"
)

// cliLogger reports progress on stderr.
var cliLogger = logging.New(os.Stderr, log.InfoLevel).WithPrefix("shelfctl")

// loadConfig loads .env files and the config, or exits.
func loadConfig(path string) *config.Config {
	config.LoadDotEnv("")
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("load config: %v", err)
	}
	return cfg
}

// openGateway opens the configured gateway. The returned store is nil for
// a remote gateway; close it when non-nil.
func openGateway(cfg *config.Config) (gateway.Gateway, *store.Store) {
	gw, st, err := app.OpenGateway(cfg, cliLogger)
	if err != nil {
		fatalf("open gateway: %v", err)
	}
	return gw, st
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// requestContext bounds one CLI request by the configured gateway timeout.
func requestContext(parent context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, cfg.Timeout())
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
