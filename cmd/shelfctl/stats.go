package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/abelbrown/shelf/internal/config"
	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/stats"
	"golang.org/x/sync/errgroup"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", config.Path(), "config file")
	compare := fs.String("compare", "", "second product id to compare against")
	asCSV := fs.Bool("csv", false, "print the distribution as CSV (rating,count,percent)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: shelfctl stats <product-id> [-compare id] [-csv]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	// Allow flags after the product id.
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	subject := fs.Arg(0)
	fs.Parse(fs.Args()[1:])

	cfg := loadConfig(*configPath)
	gw, st := openGateway(cfg)
	if st != nil {
		defer st.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()
	ctx, cancelTimeout := requestContext(ctx, cfg)
	defer cancelTimeout()

	primary, other, err := fetchPair(ctx, gw, subject, *compare)
	if err != nil {
		fatalf("%v", err)
	}

	if *asCSV {
		if err := stats.WriteCSV(os.Stdout, stats.Export(primary)); err != nil {
			fatalf("write csv: %v", err)
		}
		return
	}

	printSnapshot(os.Stdout, subject, primary)
	if other != nil {
		fmt.Println()
		printSnapshot(os.Stdout, *compare, *other)
		fmt.Printf("\ndelta: average %+.2f, recommend %+.1f%%\n",
			primary.Average-other.Average, primary.RecommendedPct-other.RecommendedPct)
	}
}

// fetchPair fetches the primary and, when compareID is set, the comparison
// snapshot concurrently. Either failure fails the command.
func fetchPair(ctx context.Context, gw gateway.Gateway, subject, compareID string) (gateway.StatsSnapshot, *gateway.StatsSnapshot, error) {
	var (
		primary gateway.StatsSnapshot
		other   *gateway.StatsSnapshot
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := gw.FetchStats(ctx, subject)
		if err != nil {
			return fmt.Errorf("stats for %s: %w", subject, err)
		}
		primary = s
		return nil
	})
	if compareID != "" {
		g.Go(func() error {
			s, err := gw.FetchStats(ctx, compareID)
			if err != nil {
				return fmt.Errorf("stats for %s: %w", compareID, err)
			}
			other = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return gateway.StatsSnapshot{}, nil, err
	}
	return primary, other, nil
}

func printSnapshot(w io.Writer, subject string, s gateway.StatsSnapshot) {
	fmt.Fprintf(w, "%s: %d reviews, average %.2f, %.0f%% recommend\n", subject, s.Total, s.Average, s.RecommendedPct)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "rating\tcount\tpercent\t")
	for _, r := range stats.Export(s) {
		fmt.Fprintf(tw, "%d\t%d\t%.1f%%\t\n", r.Rating, r.Count, r.Percent)
	}
	tw.Flush()
}
