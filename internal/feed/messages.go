package feed

import (
	"time"

	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/guard"
)

// ResetMsg reloads the feed from page 1 with new parameters.
type ResetMsg struct {
	Sort   gateway.Sort
	Filter gateway.RatingFilter
}

// LoadMoreMsg requests the next page.
type LoadMoreMsg struct{}

// MarkHelpfulMsg upvotes a review.
type MarkHelpfulMsg struct {
	ItemID string
}

// PageMsg carries the outcome of one page request.
type PageMsg struct {
	Token  guard.Token
	Query  gateway.Query
	Page   gateway.FeedPage
	Append bool
	Err    error
	Dur    time.Duration
}

// HelpfulMsg reports the remote outcome of a helpful vote.
type HelpfulMsg struct {
	ItemID string
	Err    error
}
