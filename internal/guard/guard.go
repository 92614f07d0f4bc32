// Package guard tags asynchronous requests with generation tokens so that
// responses to superseded requests can be recognized and dropped.
//
// A Guard is a plain value meant to live inside a Bubble Tea model; it is
// only touched from the model's Update and needs no locking.
package guard

import (
	"context"
	"sync/atomic"
)

// Token identifies one generation of requests. The zero Token is never
// current.
type Token uint64

// tokens is shared by every Guard so that tokens from different controller
// instances never compare equal.
var tokens atomic.Uint64

// Guard tracks the current generation of a controller.
type Guard struct {
	current Token
	cancel  context.CancelFunc
}

// Begin starts a new generation and returns its token. Every token issued
// earlier stops being current.
func (g *Guard) Begin() Token {
	g.release()
	g.current = Token(tokens.Add(1))
	return g.current
}

// BeginContext is Begin plus a context derived from parent that is
// cancelled as soon as the generation is superseded, so the transport can
// abandon work nobody will look at.
func (g *Guard) BeginContext(parent context.Context) (Token, context.Context) {
	tok := g.Begin()
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	return tok, ctx
}

// IsCurrent reports whether no Begin or Invalidate happened since t was
// issued.
func (g Guard) IsCurrent(t Token) bool {
	return t != 0 && t == g.current
}

// Current returns the token of the latest generation, or zero.
func (g Guard) Current() Token {
	return g.current
}

// Invalidate supersedes all outstanding work without starting new work.
func (g *Guard) Invalidate() {
	g.release()
	g.current = 0
}

// Close is Invalidate for disposal.
func (g *Guard) Close() {
	g.Invalidate()
}

func (g *Guard) release() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}
