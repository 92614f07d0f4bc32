package stats

import (
	"time"

	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/guard"
)

// Slot names which snapshot a response fills.
type Slot int

const (
	Primary Slot = iota
	Comparison
)

func (s Slot) String() string {
	if s == Comparison {
		return "comparison"
	}
	return "primary"
}

// RefreshMsg refetches the primary snapshot.
type RefreshMsg struct{}

// CompareMsg loads a comparison snapshot. An empty SubjectID drops the
// comparison.
type CompareMsg struct {
	SubjectID string
	Title     string
}

// SnapshotMsg carries the outcome of one stats request.
type SnapshotMsg struct {
	Token     guard.Token
	Slot      Slot
	SubjectID string
	Snapshot  gateway.StatsSnapshot
	Err       error
	Dur       time.Duration
}
