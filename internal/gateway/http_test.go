package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

var (
	_ Gateway = (*Client)(nil)
	_ Gateway = (*Latency)(nil)
)

func newTestClient(url string, retries int) *Client {
	return NewClient(ClientConfig{BaseURL: url, Timeout: 2 * time.Second, Retries: retries}, nil)
}

func TestClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", req.Method)
		}
		if req.URL.Path != "/api/products/search" {
			t.Errorf("path = %q", req.URL.Path)
		}
		if got := req.URL.Query().Get("q"); got != "tele" {
			t.Errorf("q = %q, want %q", got, "tele")
		}
		if req.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header should be set")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{"id": "OLJCESPC7Z", "name": "National Park Foundation Explorascope", "picture": "NationalParkFoundationExplorascope.jpg", "categories": []string{"telescopes"}},
				{"id": "66VCHSJNUP", "name": "Starsense Explorer Refractor Telescope", "picture": "StarsenseExplorer.jpg", "categories": []string{"telescopes", "travel"}},
			},
		})
	}))
	defer server.Close()

	items, err := newTestClient(server.URL, 0).Search(context.Background(), "tele")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[1].DisplayName != "Starsense Explorer Refractor Telescope" {
		t.Errorf("DisplayName = %q", items[1].DisplayName)
	}
	if len(items[1].Categories) != 2 || items[1].Categories[1] != "travel" {
		t.Errorf("Categories = %v", items[1].Categories)
	}
}

func TestClientFetchFeedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/products/P1/reviews" {
			t.Errorf("path = %q", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("sort") != "highest" || q.Get("page") != "2" || q.Get("rating") != "4" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reviews":[{"id":"r9","rating":4,"title":"Solid","author":"kim","createdAt":"2026-01-02T03:04:05Z","helpfulCount":7}],"hasMore":true}`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL, 0).FetchFeedPage(context.Background(), Query{
		SubjectID: "P1", Sort: SortHighest, Filter: 4, Page: 2,
	})
	if err != nil {
		t.Fatalf("FetchFeedPage() error: %v", err)
	}
	if !page.HasMore {
		t.Error("HasMore should be true")
	}
	if len(page.Reviews) != 1 || page.Reviews[0].HelpfulCount != 7 {
		t.Fatalf("Reviews = %+v", page.Reviews)
	}
	if page.Reviews[0].CreatedAt.Year() != 2026 {
		t.Errorf("CreatedAt = %v", page.Reviews[0].CreatedAt)
	}
}

func TestClientFetchFeedPageOmitsInactiveFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Has("rating") {
			t.Errorf("rating should be omitted, got %q", req.URL.RawQuery)
		}
		if got := req.URL.Query().Get("page"); got != "1" {
			t.Errorf("page = %q, want 1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reviews":[],"hasMore":false}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 0).FetchFeedPage(context.Background(), Query{SubjectID: "P1"})
	if err != nil {
		t.Fatalf("FetchFeedPage() error: %v", err)
	}
}

func TestClientFetchStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":13,"average":4.38,"distribution":{"5":10,"4":0,"3":2,"2":0,"1":1},"recommendedPct":84.6}`))
	}))
	defer server.Close()

	snap, err := newTestClient(server.URL, 0).FetchStats(context.Background(), "P1")
	if err != nil {
		t.Fatalf("FetchStats() error: %v", err)
	}
	if snap.Total != 13 || snap.Distribution[5] != 10 || snap.Distribution[1] != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestClientMarkHelpfulDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		if req.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", req.Method)
		}
		if req.URL.Path != "/api/reviews/r1/helpful" {
			t.Errorf("path = %q", req.URL.Path)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := newTestClient(server.URL, 3).MarkHelpful(context.Background(), "r1")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("POST should not be retried, got %d calls", got)
	}
}

func TestClientRetriesGetOn5xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL, 3).Search(context.Background(), "ab"); err != nil {
		t.Fatalf("Search() error after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestClientNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 0).FetchStats(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClientCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(server.URL, 0).Search(ctx, "ab"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSortNext(t *testing.T) {
	got := SortNewest
	for range Sorts {
		got = got.Next()
	}
	if got != SortNewest {
		t.Errorf("cycling through all sorts should wrap to newest, got %q", got)
	}
	if Sort("bogus").Next() != SortNewest {
		t.Error("unknown sort should cycle to newest")
	}
}

func TestRatingFilter(t *testing.T) {
	if NoFilter.Active() {
		t.Error("NoFilter should not be active")
	}
	if !RatingFilter(3).Active() || RatingFilter(6).Valid() || RatingFilter(-1).Valid() {
		t.Error("rating filter bounds wrong")
	}
}

func TestWithLatencyDisabled(t *testing.T) {
	var gw Gateway = &Client{}
	if WithLatency(gw, 0, 0) != gw {
		t.Error("zero max latency should return the gateway unchanged")
	}
}
