package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/abelbrown/shelf/internal/config"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", config.Path(), "config file")
	fs.Parse(os.Args[1:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fatalf("usage: shelfctl search <query>")
	}

	cfg := loadConfig(*configPath)
	gw, st := openGateway(cfg)
	if st != nil {
		defer st.Close()
	}

	ctx, cancel := requestContext(context.Background(), cfg)
	defer cancel()

	items, err := gw.Search(ctx, query)
	if err != nil {
		fatalf("search %q: %v", query, err)
	}
	if len(items) == 0 {
		fmt.Println("no results")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORIES")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.DisplayName, strings.Join(it.Categories, ", "))
	}
	tw.Flush()
}
