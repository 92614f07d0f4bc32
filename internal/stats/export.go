package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/abelbrown/shelf/internal/gateway"
)

// Row is one rating bucket of an exported distribution.
type Row struct {
	Rating  int
	Count   int
	Percent float64 // share of Total, rounded to one decimal
}

// Export flattens a snapshot into rows for ratings 5 down to 1. Ratings
// missing from the distribution count as zero.
func Export(s gateway.StatsSnapshot) []Row {
	rows := make([]Row, 0, 5)
	for r := 5; r >= 1; r-- {
		n := s.Distribution[r]
		rows = append(rows, Row{Rating: r, Count: n, Percent: percent(n, s.Total)})
	}
	return rows
}

func percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

// WriteCSV writes rows as "rating,count,percent" with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rating", "count", "percent"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Rating), strconv.Itoa(r.Count), fmt.Sprintf("%.1f%%", r.Percent)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
