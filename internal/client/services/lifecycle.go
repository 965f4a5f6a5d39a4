package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/verifynow/internal/client/models"
)

// State is the position of a submission in its lifecycle.
type State int

const (
	StateIdle State = iota
	StatePending
	StateFulfilled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateFulfilled || s == StateFailed
}

// Outcome is the terminal result of a lifecycle.
type Outcome struct {
	Result       *models.VerificationResult
	Presentation models.Verdict
	Err          error
	// Message is user-facing text for failures and unsupported kinds.
	Message string
	// Unsupported marks a recognised kind the client cannot verify yet.
	Unsupported bool
	// RedirectToLogin asks the caller to send the user to the login flow.
	RedirectToLogin bool
	// Historical marks a replayed result that made no request.
	Historical bool
}

// Lifecycle tracks one submission from Idle to Fulfilled or Failed. It is
// never reused for another submission.
type Lifecycle struct {
	kind models.Kind

	mu      sync.Mutex
	state   State
	outcome Outcome
	done    chan struct{}
}

func newLifecycle(kind models.Kind) *Lifecycle {
	return &Lifecycle{kind: kind, done: make(chan struct{})}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Done is closed when the lifecycle reaches a terminal state.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the lifecycle is terminal or ctx is done. Giving up on
// ctx does not cancel the request; its result is simply not observed.
func (l *Lifecycle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-l.done:
		o, _ := l.Outcome()
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Outcome returns the terminal outcome; ok is false while not terminal.
func (l *Lifecycle) Outcome() (o Outcome, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.state.Terminal() {
		return Outcome{}, false
	}
	return l.outcome, true
}

func (l *Lifecycle) markPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateIdle {
		return false
	}
	l.state = StatePending
	return true
}

// resolve moves the lifecycle to a terminal state once; later calls are
// ignored.
func (l *Lifecycle) resolve(state State, o Outcome) bool {
	l.mu.Lock()
	if l.state.Terminal() {
		l.mu.Unlock()
		return false
	}
	l.state = state
	l.outcome = o
	l.mu.Unlock()

	close(l.done)
	return true
}
