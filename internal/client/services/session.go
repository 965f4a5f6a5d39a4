// Package services contains the application services of the VerifyNow client:
// the session manager that owns the credential, the verifier that runs one
// lifecycle per submission, and the history service.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/auth"
	"github.com/dmitrijs2005/verifynow/internal/client/client"
	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/logging"
)

// ErrIncompleteCredential is returned by Login when the token or the profile
// email is missing.
var ErrIncompleteCredential = errors.New("credential requires a token and a profile email")

// Status is the externally visible state of the session.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusLoading
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Token   string
	User    models.UserProfile
	Loading bool
	// ExpiresAt is the token's exp claim; zero when unknown.
	ExpiresAt time.Time
}

// Credential returns the token and profile as a Credential.
func (s Snapshot) Credential() models.Credential {
	return models.Credential{Token: s.Token, User: s.User}
}

// IsAuthenticated reports whether the snapshot holds a token and a profile email.
func (s Snapshot) IsAuthenticated() bool {
	return s.Credential().IsAuthenticated()
}

// SessionManager owns the credential. All reads go through Snapshot; all
// changes are written to the local store before they become visible in
// memory, and every change is broadcast to subscribers.
type SessionManager struct {
	client   client.Client
	store    credentialStore
	log      logging.Logger
	notifier Notifier
	now      func() time.Time

	mu      sync.Mutex
	cred    models.Credential
	gen     uint64
	pending int
	ready   chan struct{}

	listenersMu sync.Mutex
	listeners   map[uint64]func()
	nextID      uint64
}

// NewSessionManager builds a manager over the metadata table in db. A nil
// notifier discards acknowledgments.
func NewSessionManager(c client.Client, db *sql.DB, log logging.Logger, notifier Notifier) *SessionManager {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	ready := make(chan struct{})
	close(ready)
	return &SessionManager{
		client:    c,
		store:     credentialStore{db: db},
		log:       log.With("component", "session"),
		notifier:  notifier,
		now:       time.Now,
		ready:     ready,
		listeners: make(map[uint64]func()),
	}
}

// Initialize restores the stored credential. When a token is found the
// session is marked loading and re-validated in the background; the returned
// channel is closed once the session has settled.
func (s *SessionManager) Initialize(ctx context.Context) <-chan struct{} {
	cred, err := s.store.load(ctx)
	if err != nil {
		s.log.Warn(ctx, "stored session unreadable, starting logged out", "error", err)
		if errors.Is(err, errCorruptProfile) {
			if err := s.store.clear(ctx); err != nil {
				s.log.Warn(ctx, "failed to clear stored session", "error", err)
			}
		}
		cred = models.Credential{}
	}

	if cred.Token == "" && cred.User != (models.UserProfile{}) {
		if err := s.store.clear(ctx); err != nil {
			s.log.Warn(ctx, "failed to clear stray profile", "error", err)
		}
	}

	s.mu.Lock()
	s.cred = cred
	s.gen++
	if cred.Token == "" {
		s.cred = models.Credential{}
		ready := s.ready
		s.mu.Unlock()
		s.broadcast()
		return ready
	}
	s.beginLoadingLocked()
	ready := s.ready
	s.mu.Unlock()

	s.broadcast()
	go s.refresh(context.WithoutCancel(ctx), true)
	return ready
}

// Ready returns a channel that is closed whenever the session is not loading.
func (s *SessionManager) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Login stores token and profile as the current credential. On a store
// failure the in-memory session is left untouched and the error returned.
func (s *SessionManager) Login(ctx context.Context, token string, profile models.UserProfile) error {
	cred := models.Credential{Token: token, User: profile.Normalize()}
	if !cred.IsAuthenticated() {
		return ErrIncompleteCredential
	}

	s.mu.Lock()
	if err := s.store.save(ctx, cred); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cred = cred
	s.gen++
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "user_id", cred.User.ID)
	s.broadcast()
	s.notifier.Notify("Login Successful", "Welcome, "+cred.User.Name+"!")
	return nil
}

// LoginWithGoogle exchanges a Google ID token for a session and logs in.
func (s *SessionManager) LoginWithGoogle(ctx context.Context, idToken string) error {
	token, user, err := s.client.GoogleLogin(ctx, idToken)
	if err != nil {
		s.log.Warn(ctx, "google login failed", "error", err)
		return err
	}
	return s.Login(ctx, token, user)
}

// Logout clears the credential. Memory is always cleared; the returned error
// only reports a failure to clear the local store.
func (s *SessionManager) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.cred = models.Credential{}
	s.gen++
	err := s.store.clear(ctx)
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(ctx, "failed to clear stored session", "error", err)
	}
	s.log.Info(ctx, "logged out")
	s.broadcast()
	s.notifier.Notify("Logged Out", "You have been successfully logged out.")
	return err
}

// Refresh re-validates the current token with the backend. Any rejection,
// malformed answer or network failure logs the session out. A valid answer
// that cannot be persisted keeps the previous in-memory credential. A result is
// dropped when the credential changed while the check was in flight, and a
// cancelled ctx leaves the session as it was.
func (s *SessionManager) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.beginLoadingLocked()
	s.mu.Unlock()
	s.broadcast()

	s.refresh(ctx, false)
}

func (s *SessionManager) refresh(ctx context.Context, initial bool) {
	s.mu.Lock()
	token, gen := s.cred.Token, s.gen
	s.mu.Unlock()

	var (
		user   models.UserProfile
		err    error
		result string
	)
	switch {
	case token == "":
		result = refreshNoToken
	case auth.Expired(token, s.now()):
		result = refreshExpired
	default:
		user, err = s.client.VerifyToken(ctx, token)
		if err != nil && ctx.Err() != nil {
			result = refreshCanceled
		} else if err != nil {
			result = refreshRejected
			s.log.Warn(ctx, "session re-validation failed", "error", err, "initial", initial)
		} else {
			result = refreshValid
		}
	}

	s.mu.Lock()
	switch {
	case result == refreshCanceled:
		// keep the session
	case s.gen != gen:
		result = refreshSuperseded
	case result == refreshValid:
		cred := models.Credential{Token: token, User: user.Normalize()}
		if err := s.store.save(ctx, cred); err != nil {
			// same rule as Login: memory only follows a committed write
			s.log.Warn(ctx, "failed to persist refreshed session", "error", err)
			break
		}
		s.cred = cred
		s.gen++
	default:
		if err := s.store.clear(ctx); err != nil {
			s.log.Warn(ctx, "failed to clear stored session", "error", err)
		}
		s.cred = models.Credential{}
		s.gen++
	}
	s.endLoadingLocked()
	s.mu.Unlock()

	sessionRefreshTotal.WithLabelValues(result).Inc()
	s.log.Debug(ctx, "session refreshed", "result", result)
	s.broadcast()
}

func (s *SessionManager) beginLoadingLocked() {
	if s.pending == 0 {
		s.ready = make(chan struct{})
	}
	s.pending++
}

func (s *SessionManager) endLoadingLocked() {
	s.pending--
	if s.pending == 0 {
		close(s.ready)
	}
}

// Snapshot returns the current session state.
func (s *SessionManager) Snapshot() Snapshot {
	s.mu.Lock()
	cred, loading := s.cred, s.pending > 0
	s.mu.Unlock()

	snap := Snapshot{Token: cred.Token, User: cred.User, Loading: loading}
	if exp, ok := auth.ExpiresAt(cred.Token); ok {
		snap.ExpiresAt = exp
	}
	return snap
}

// IsAuthenticated reports whether the current credential is complete. It is
// false while the startup check is loading a stored token.
func (s *SessionManager) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred.IsAuthenticated()
}

// Status reports Loading while any re-validation is in flight, otherwise
// Authenticated or Unauthenticated.
func (s *SessionManager) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.pending > 0:
		return StatusLoading
	case s.cred.IsAuthenticated():
		return StatusAuthenticated
	default:
		return StatusUnauthenticated
	}
}

// Subscribe registers fn to be called after every session change. Listeners
// receive no payload; they read Snapshot again. The returned function
// removes the listener.
func (s *SessionManager) Subscribe(fn func()) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *SessionManager) broadcast() {
	s.listenersMu.Lock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
