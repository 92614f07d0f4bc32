// Package ui provides the root Bubble Tea model for shelf: a tabbed shell
// around the search, review feed and statistics controllers.
package ui

import "github.com/abelbrown/shelf/internal/gateway"

// OpenMsg opens the review feed and statistics for a product.
type OpenMsg struct {
	Item gateway.ResultItem
}

// CompareMsg loads a product as the statistics comparison.
type CompareMsg struct {
	Item gateway.ResultItem
}
