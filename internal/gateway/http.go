package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ClientConfig configures the HTTP gateway.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	RatePerSec float64 // <= 0 disables throttling
	Burst      int
	UserAgent  string
}

// Client talks to the storefront catalog over HTTP/JSON.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

type searchResponse struct {
	Products []ResultItem `json:"products"`
}

// NewClient creates a Client. logger may be nil.
func NewClient(cfg ClientConfig, logger *log.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "shelf/0.1"
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}

	c := &Client{limiter: limiter, logger: logger}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryable).
		AddRetryHook(func(r *resty.Response, err error) {
			if c.logger == nil || r == nil || r.Request == nil {
				return
			}
			c.logger.Warn("retrying request", "method", r.Request.Method, "url", r.Request.URL,
				"status", r.StatusCode(), "attempt", r.Request.Attempt, "err", err)
		}).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			r.SetHeader("X-Request-ID", uuid.NewString())
			return nil
		})
	return c
}

// retryable retries idempotent reads on transport errors, 429 and 5xx.
// Writes are never retried.
func retryable(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.http.R().SetContext(ctx), nil
}

// Search returns product suggestions for text.
func (c *Client) Search(ctx context.Context, text string) ([]ResultItem, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var out searchResponse
	resp, err := req.
		SetQueryParam("q", text).
		SetResult(&out).
		Get("/api/products/search")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	return out.Products, nil
}

// FetchFeedPage returns one page of reviews for q.SubjectID.
func (c *Client) FetchFeedPage(ctx context.Context, q Query) (FeedPage, error) {
	req, err := c.request(ctx)
	if err != nil {
		return FeedPage{}, err
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	sort := q.Sort
	if !sort.Valid() {
		sort = SortNewest
	}
	req.SetPathParam("id", q.SubjectID).
		SetQueryParam("sort", string(sort)).
		SetQueryParam("page", strconv.Itoa(page))
	if q.Filter.Active() {
		req.SetQueryParam("rating", strconv.Itoa(int(q.Filter)))
	}

	var out FeedPage
	resp, err := req.SetResult(&out).Get("/api/products/{id}/reviews")
	if err := check(resp, err); err != nil {
		return FeedPage{}, fmt.Errorf("fetch reviews %s page %d: %w", q.SubjectID, page, err)
	}
	return out, nil
}

// MarkHelpful records a helpful vote for a review.
func (c *Client) MarkHelpful(ctx context.Context, itemID string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetPathParam("id", itemID).Post("/api/reviews/{id}/helpful")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("mark helpful %s: %w", itemID, err)
	}
	return nil
}

// FetchStats returns the review statistics for a subject.
func (c *Client) FetchStats(ctx context.Context, subjectID string) (StatsSnapshot, error) {
	req, err := c.request(ctx)
	if err != nil {
		return StatsSnapshot{}, err
	}
	var out StatsSnapshot
	resp, err := req.SetPathParam("id", subjectID).
		SetResult(&out).
		Get("/api/products/{id}/reviews/stats")
	if err := check(resp, err); err != nil {
		return StatsSnapshot{}, fmt.Errorf("fetch stats %s: %w", subjectID, err)
	}
	if out.Distribution == nil {
		out.Distribution = make(map[int]int, 5)
	}
	return out, nil
}

// check maps a resty outcome onto the gateway error taxonomy.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.IsError() {
		body := resp.String()
		if len(body) > 200 {
			body = body[:200]
		}
		return &StatusError{Code: resp.StatusCode(), Body: body}
	}
	return nil
}
