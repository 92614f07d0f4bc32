package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/shelf/internal/config"
)

func runConfig() {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", config.Path(), "config file")
	initFile := fs.Bool("init", false, "write the default configuration to -config if it does not exist")
	fs.Parse(os.Args[1:])

	if *initFile {
		if _, err := os.Stat(*configPath); err == nil {
			fatalf("%s already exists", *configPath)
		}
		if err := config.Default().Save(*configPath); err != nil {
			fatalf("write config: %v", err)
		}
		cliLogger.Info("wrote default config", "path", *configPath)
		return
	}

	cfg := loadConfig(*configPath)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fatalf("encode config: %v", err)
	}
	fmt.Println(string(data))
}
