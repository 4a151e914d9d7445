// Package status holds the single operation status shown on the status line.
//
// A Controller is the only writer of the status. Other components request
// transitions through Set and never mutate state directly. The controller owns
// no timers: components that want a transient message to fade back to idle
// keep the Token returned by Set and call RevertIfCurrent when their own timer
// fires, so a late revert can never clobber a newer status.
package status

import (
	"sync"
)

// Kind enumerates the status states.
type Kind int

const (
	Idle Kind = iota
	Typing
	Saving
	Loading
	Success
	Error
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case Saving:
		return "saving"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Display classes used by renderers to pick a style.
const (
	ClassNone   = ""
	ClassSaving = "saving"
	ClassSaved  = "saved"
	ClassError  = "error"
)

// Token identifies one Set call.
type Token uint64

// Snapshot is an immutable view of the status.
type Snapshot struct {
	Kind    Kind
	Message string
	Text    string
	Class   string
	Token   Token
}

// Controller is the single-writer status state machine.
type Controller struct {
	mu        sync.Mutex
	current   Snapshot
	seq       Token
	listeners []func(Snapshot)
}

// New returns a controller in the idle state.
func New() *Controller {
	c := &Controller{}
	c.current = render(Idle, "", 0)
	return c
}

// Set transitions to kind. The message is only shown for kinds that carry one
// (success, error) and overrides the default text for in-progress kinds.
func (c *Controller) Set(kind Kind, message string) Token {
	c.mu.Lock()
	c.seq++
	c.current = render(kind, message, c.seq)
	snap := c.current
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap.Token
}

// RevertIfCurrent returns to idle when no other transition happened since tok
// was issued. It reports whether it reverted.
func (c *Controller) RevertIfCurrent(tok Token) bool {
	c.mu.Lock()
	if c.current.Token != tok || c.current.Kind == Idle {
		c.mu.Unlock()
		return false
	}
	c.seq++
	c.current = render(Idle, "", c.seq)
	snap := c.current
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return true
}

// Snapshot returns the current status.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers fn to be called after every transition. Listeners run
// on the goroutine that made the transition and must not block.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func render(kind Kind, message string, tok Token) Snapshot {
	snap := Snapshot{Kind: kind, Message: message, Token: tok}
	switch kind {
	case Idle:
		snap.Text, snap.Class = "Ready", ClassNone
	case Typing:
		snap.Text, snap.Class = "Typing...", ClassSaving
	case Saving:
		snap.Text, snap.Class = "Saving...", ClassSaving
	case Loading:
		snap.Text, snap.Class = "Loading...", ClassSaving
	case Success:
		snap.Text, snap.Class = "Saved", ClassSaved
	case Error:
		snap.Text, snap.Class = "Error", ClassError
	}
	if message != "" {
		snap.Text = message
	}
	return snap
}
