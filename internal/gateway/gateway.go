// Package gateway defines the boundary to the remote catalog service:
// the domain types exchanged with it and the Gateway contract the
// controllers depend on.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when the gateway has no record for an id.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx response from the remote service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gateway: status %d", e.Code)
	}
	return fmt.Sprintf("gateway: status %d: %s", e.Code, e.Body)
}

// Sort orders a review feed.
type Sort string

const (
	SortNewest      Sort = "newest"
	SortHighest     Sort = "highest"
	SortLowest      Sort = "lowest"
	SortMostHelpful Sort = "most_helpful"
)

// Sorts lists every sort option in cycling order.
var Sorts = []Sort{SortNewest, SortHighest, SortLowest, SortMostHelpful}

// Valid reports whether s is a known sort option.
func (s Sort) Valid() bool {
	for _, v := range Sorts {
		if s == v {
			return true
		}
	}
	return false
}

// Next returns the sort option after s, wrapping around.
func (s Sort) Next() Sort {
	for i, v := range Sorts {
		if s == v {
			return Sorts[(i+1)%len(Sorts)]
		}
	}
	return SortNewest
}

// Label is a short human label for s.
func (s Sort) Label() string {
	switch s {
	case SortHighest:
		return "Highest rated"
	case SortLowest:
		return "Lowest rated"
	case SortMostHelpful:
		return "Most helpful"
	default:
		return "Newest"
	}
}

// RatingFilter restricts a feed to one star rating. The zero value means
// no filter.
type RatingFilter int

// NoFilter disables rating filtering.
const NoFilter RatingFilter = 0

// Valid reports whether f is NoFilter or a rating in 1..5.
func (f RatingFilter) Valid() bool {
	return f >= 0 && f <= 5
}

// Active reports whether f restricts results.
func (f RatingFilter) Active() bool {
	return f >= 1 && f <= 5
}

// Query describes one request against the gateway. A new Query is built
// for every request; it is never mutated after issuance.
type Query struct {
	SubjectID string
	Text      string
	Sort      Sort
	Filter    RatingFilter
	Page      int
}

// ResultItem is one search suggestion.
type ResultItem struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"name"`
	ThumbnailRef string   `json:"picture"`
	Categories   []string `json:"categories"`
}

// FeedItem is one review in a paginated feed.
type FeedItem struct {
	ID           string    `json:"id"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	HelpfulCount int       `json:"helpfulCount"`
}

// FeedPage is one page of a review feed.
type FeedPage struct {
	Reviews []FeedItem `json:"reviews"`
	HasMore bool       `json:"hasMore"`
}

// StatsSnapshot summarizes the reviews of a subject. Distribution maps a
// rating (1..5) to its review count; its values are expected to sum to
// Total.
type StatsSnapshot struct {
	Total          int         `json:"total"`
	Average        float64     `json:"average"`
	Distribution   map[int]int `json:"distribution"`
	RecommendedPct float64     `json:"recommendedPct"`
}

// Gateway is the remote collection service. Implementations must be safe
// for concurrent use: commands run on their own goroutines.
type Gateway interface {
	Search(ctx context.Context, text string) ([]ResultItem, error)
	FetchFeedPage(ctx context.Context, q Query) (FeedPage, error)
	MarkHelpful(ctx context.Context, itemID string) error
	FetchStats(ctx context.Context, subjectID string) (StatsSnapshot, error)
}
