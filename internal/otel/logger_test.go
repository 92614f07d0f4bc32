package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEmitWritesValidJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindFeedPage, Level: LevelInfo, Comp: "feed", Gen: 7, Page: 2, Subject: "P1"})
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := map[string]any{"kind": "feed.page", "level": "info", "comp": "feed", "gen": float64(7), "page": float64(2), "subject": "P1"}
	for k, v := range want {
		if decoded[k] != v {
			t.Errorf("%s = %v, want %v", k, decoded[k], v)
		}
	}
}

func TestEmitSetsTimeAndSessionID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()
	after := time.Now()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Time.Before(before) || ev.Time.After(after) {
		t.Errorf("time %v not in [%v, %v]", ev.Time, before, after)
	}
	if ev.SessionID != l.SessionID() || ev.SessionID == "" {
		t.Errorf("session_id = %q, want %q", ev.SessionID, l.SessionID())
	}
}

func TestDurToMs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindSearchComplete, Dur: 1500 * time.Millisecond})
	l.Close()

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if durMs, _ := decoded["dur_ms"].(float64); durMs != 1500 {
		t.Errorf("expected dur_ms=1500, got %v", decoded["dur_ms"])
	}
}

func TestOmitempty(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := strings.TrimSpace(buf.String())
	for _, field := range []string{"dur_ms", "count", "page", "subject", "query", "err", "msg", "extra", "gen"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("expected field %q to be omitted, but found in: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindSearchStart, Comp: "test"})
		}()
	}
	wg.Wait()
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 lines, got %d", len(lines))
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Emit(Event{Kind: KindStartup})
	l.Info(KindStartup, "main", "hi")
	l.Error(KindError, "main", errors.New("boom"))
	l.Close()
	if l.Dropped() != 0 {
		t.Error("nil logger should report no drops")
	}
}

func TestCloseIsIdempotentAndDropsLateEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup, Msg: "start"})
	l.Close()
	l.Close()
	l.Emit(Event{Kind: KindShutdown})

	if n := len(strings.Split(strings.TrimSpace(buf.String()), "\n")); n != 1 {
		t.Errorf("expected 1 line, got %d", n)
	}
	if l.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", l.Dropped())
	}
}

func TestConvenienceHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Debug(KindSearchStale, "search", "superseded")
	l.Info(KindStartup, "main", "starting")
	l.Warn(KindFeedHelpfulError, "feed", "timeout")
	l.Error(KindError, "main", errors.New("disk full"))
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	tests := []struct {
		level string
		kind  string
		comp  string
	}{
		{"debug", "search.stale", "search"},
		{"info", "sys.startup", "main"},
		{"warn", "feed.helpful_error", "feed"},
		{"error", "sys.error", "main"},
	}
	for i, tt := range tests {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &decoded); err != nil {
			t.Errorf("line %d: %v", i, err)
			continue
		}
		if decoded["level"] != tt.level || decoded["kind"] != tt.kind || decoded["comp"] != tt.comp {
			t.Errorf("line %d: got %v/%v/%v, want %s/%s/%s", i,
				decoded["level"], decoded["kind"], decoded["comp"], tt.level, tt.kind, tt.comp)
		}
	}
}

func TestMetricsSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	l := NewNullLogger()
	l.SetMetrics(m)

	l.Emit(Event{Kind: KindSearchStale, Level: LevelDebug})
	l.Emit(Event{Kind: KindSearchStale, Level: LevelDebug})
	l.Emit(Event{Kind: KindFeedPage, Dur: 40 * time.Millisecond})
	l.Close()

	if got := testutil.ToFloat64(m.events.WithLabelValues("search.stale", "debug")); got != 2 {
		t.Errorf("search.stale count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("feed.page", "info")); got != 1 {
		t.Errorf("feed.page count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.durations); n != 1 {
		t.Errorf("expected 1 duration series, got %d", n)
	}
}
