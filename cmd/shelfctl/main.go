// Command shelfctl is the maintenance CLI for shelf.
//
// Usage:
//
//	shelfctl                         Show help
//	shelfctl seed                    Load the demo catalog into the local database
//	shelfctl search <query>          Run one catalog search
//	shelfctl stats <id> [-compare]   Review statistics, optionally as CSV
//	shelfctl events                  JSONL event log viewer
//	shelfctl config                  Print or initialize the configuration
package main

import (
	"fmt"
	"os"
)

const usage = `shelfctl - shelf maintenance CLI

Usage:
  shelfctl <command> [flags]

Commands:
  seed        Load the demo catalog into the local database
  search      Run one catalog search and print the results
  stats       Review statistics for a product (-compare, -csv)
  events      JSONL event log viewer
  config      Print the effective configuration (-init writes defaults)

Environment:
  SHELF_GATEWAY_URL     Remote catalog base URL (default: local SQLite catalog)
  SHELF_CATALOG_PATH    Local catalog database path
  SHELF_LOG_EVENT_LOG   Event log path

Run 'shelfctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "seed":
		runSeed()
	case "search":
		runSearch()
	case "stats":
		runStats()
	case "events":
		runEvents()
	case "config":
		runConfig()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "shelfctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
