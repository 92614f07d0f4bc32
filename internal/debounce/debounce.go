// Package debounce coalesces bursts of input into a single delayed trigger.
//
// It follows the Bubble Tea tick pattern: Schedule returns a command that
// sleeps and then delivers a FireMsg. Each Schedule call bumps a tag, and
// the owning model asks Fired whether the message belongs to the latest
// tag. Earlier timers still deliver their messages but are ignored, so per
// burst exactly one fire is accepted and it carries the last payload.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the search-as-you-type quiet period.
const DefaultDelay = 300 * time.Millisecond

var lastID atomic.Int64

// FireMsg is delivered when a scheduled timer elapses.
type FireMsg struct {
	id      int64
	tag     int
	Payload any
}

// Scheduler arms at most one effective timer at a time.
type Scheduler struct {
	id    int64
	tag   int
	delay time.Duration
	armed bool
}

// New creates a Scheduler. A non-positive delay means DefaultDelay.
func New(delay time.Duration) Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return Scheduler{id: lastID.Add(1), delay: delay}
}

// Delay returns the quiet period.
func (s Scheduler) Delay() time.Duration {
	return s.delay
}

// Schedule arms the timer, superseding any timer armed earlier.
func (s *Scheduler) Schedule(payload any) tea.Cmd {
	s.tag++
	s.armed = true
	id, tag := s.id, s.tag
	return tea.Tick(s.delay, func(time.Time) tea.Msg {
		return FireMsg{id: id, tag: tag, Payload: payload}
	})
}

// Cancel disarms the pending timer, if any. Idempotent.
func (s *Scheduler) Cancel() {
	if s.armed {
		s.tag++
		s.armed = false
	}
}

// Pending reports whether a timer is armed and has not fired.
func (s Scheduler) Pending() bool {
	return s.armed
}

// Fired reports whether msg is the latest timer of this scheduler and
// disarms it. Superseded or cancelled timers report false.
func (s *Scheduler) Fired(msg FireMsg) bool {
	if !s.armed || msg.id != s.id || msg.tag != s.tag {
		return false
	}
	s.armed = false
	return true
}
