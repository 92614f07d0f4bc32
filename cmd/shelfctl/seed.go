package main

import (
	"flag"
	"os"
	"time"

	"github.com/abelbrown/shelf/internal/config"
)

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", config.Path(), "config file")
	perProduct := fs.Int("reviews", 40, "reviews generated per product")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*configPath)
	if cfg.Remote() {
		fatalf("seed writes the local catalog; unset gateway.url (currently %s)", cfg.Gateway.URL)
	}

	_, st := openGateway(cfg)
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()

	res, err := st.Seed(ctx, *perProduct, time.Now())
	if err != nil {
		fatalf("seed: %v", err)
	}
	cliLogger.Info("catalog seeded", "path", cfg.Catalog.Path, "products", res.Products, "reviews", res.Reviews)
}
