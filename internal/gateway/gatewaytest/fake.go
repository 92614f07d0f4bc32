// Package gatewaytest provides a scriptable in-memory Gateway for
// controller tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/abelbrown/shelf/internal/gateway"
)

// Fake records every call and answers through the optional hooks. A nil
// hook returns zero values.
type Fake struct {
	SearchFunc  func(ctx context.Context, text string) ([]gateway.ResultItem, error)
	FeedFunc    func(ctx context.Context, q gateway.Query) (gateway.FeedPage, error)
	HelpfulFunc func(ctx context.Context, itemID string) error
	StatsFunc   func(ctx context.Context, subjectID string) (gateway.StatsSnapshot, error)

	mu       sync.Mutex
	searches []string
	queries  []gateway.Query
	helpful  []string
	stats    []string
	ctxs     []context.Context
}

var _ gateway.Gateway = (*Fake)(nil)

func (f *Fake) record(ctx context.Context, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
	f.ctxs = append(f.ctxs, ctx)
}

func (f *Fake) Search(ctx context.Context, text string) ([]gateway.ResultItem, error) {
	f.record(ctx, func() { f.searches = append(f.searches, text) })
	if f.SearchFunc == nil {
		return nil, nil
	}
	return f.SearchFunc(ctx, text)
}

func (f *Fake) FetchFeedPage(ctx context.Context, q gateway.Query) (gateway.FeedPage, error) {
	f.record(ctx, func() { f.queries = append(f.queries, q) })
	if f.FeedFunc == nil {
		return gateway.FeedPage{}, nil
	}
	return f.FeedFunc(ctx, q)
}

func (f *Fake) MarkHelpful(ctx context.Context, itemID string) error {
	f.record(ctx, func() { f.helpful = append(f.helpful, itemID) })
	if f.HelpfulFunc == nil {
		return nil
	}
	return f.HelpfulFunc(ctx, itemID)
}

func (f *Fake) FetchStats(ctx context.Context, subjectID string) (gateway.StatsSnapshot, error) {
	f.record(ctx, func() { f.stats = append(f.stats, subjectID) })
	if f.StatsFunc == nil {
		return gateway.StatsSnapshot{}, nil
	}
	return f.StatsFunc(ctx, subjectID)
}

// Searches returns the texts passed to Search, in call order.
func (f *Fake) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

// Queries returns the feed queries, in call order.
func (f *Fake) Queries() []gateway.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.Query(nil), f.queries...)
}

// Helpful returns the ids passed to MarkHelpful.
func (f *Fake) Helpful() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.helpful...)
}

// Stats returns the subjects passed to FetchStats.
func (f *Fake) Stats() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stats...)
}

// Contexts returns the context of every call, in call order.
func (f *Fake) Contexts() []context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]context.Context(nil), f.ctxs...)
}
