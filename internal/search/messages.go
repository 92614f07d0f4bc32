package search

import (
	"time"

	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/guard"
)

// ResultsMsg carries the outcome of one search request.
type ResultsMsg struct {
	Token guard.Token
	Text  string
	Items []gateway.ResultItem
	Err   error
	Dur   time.Duration
}

// SelectedMsg is emitted when the user picks a suggestion.
type SelectedMsg struct {
	Item gateway.ResultItem
}

// HoverMsg moves the cursor to Index, e.g. on mouse motion.
type HoverMsg struct {
	Index int
}

// SetQueryMsg replaces the input text as if it had been typed.
type SetQueryMsg struct {
	Text string
}

// ClearMsg empties the input and returns the controller to Idle.
type ClearMsg struct{}
