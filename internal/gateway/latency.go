package gateway

import (
	"context"
	"math/rand/v2"
	"time"
)

// Latency wraps a Gateway and delays every call by a random duration in
// [Min, Max]. Used in development to make responses arrive out of order.
type Latency struct {
	Next Gateway
	Min  time.Duration
	Max  time.Duration
}

// WithLatency returns gw unchanged when hi is not positive.
func WithLatency(gw Gateway, lo, hi time.Duration) Gateway {
	if hi <= 0 {
		return gw
	}
	if lo < 0 || lo > hi {
		lo = 0
	}
	return &Latency{Next: gw, Min: lo, Max: hi}
}

func (l *Latency) wait(ctx context.Context) error {
	d := l.Min
	if span := l.Max - l.Min; span > 0 {
		d += time.Duration(rand.Int64N(int64(span)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *Latency) Search(ctx context.Context, text string) ([]ResultItem, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.Next.Search(ctx, text)
}

func (l *Latency) FetchFeedPage(ctx context.Context, q Query) (FeedPage, error) {
	if err := l.wait(ctx); err != nil {
		return FeedPage{}, err
	}
	return l.Next.FetchFeedPage(ctx, q)
}

func (l *Latency) MarkHelpful(ctx context.Context, itemID string) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.Next.MarkHelpful(ctx, itemID)
}

func (l *Latency) FetchStats(ctx context.Context, subjectID string) (StatsSnapshot, error) {
	if err := l.wait(ctx); err != nil {
		return StatsSnapshot{}, err
	}
	return l.Next.FetchStats(ctx, subjectID)
}
