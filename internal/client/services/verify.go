package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/auth"
	"github.com/dmitrijs2005/verifynow/internal/client/client"
	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/logging"
)

const (
	msgVideoUnsupported = "Video verification is not yet implemented."
	msgUnsupportedKind  = "Unsupported verification type."
	msgCancelled        = "Verification cancelled."
)

// SessionSource is the read side of the session the verifier depends on.
type SessionSource interface {
	Ready() <-chan struct{}
	Snapshot() Snapshot
}

// Verifier turns submissions into lifecycles. It keeps no state between
// submissions; the only guard is the one-shot claim on each Submission.
type Verifier struct {
	client  client.Client
	session SessionSource
	log     logging.Logger
	now     func() time.Time
}

// NewVerifier builds a verifier that reads the credential from session and
// sends requests through c.
func NewVerifier(c client.Client, session SessionSource, log logging.Logger) *Verifier {
	return &Verifier{client: c, session: session, log: log.With("component", "verifier"), now: time.Now}
}

// Submit returns the lifecycle of sub, starting it on the first call. Later
// calls with the same submission return the same lifecycle and make no
// further request.
//
// The request itself is detached from ctx; ctx only bounds the wait for a
// loading session.
func (v *Verifier) Submit(ctx context.Context, sub *models.Submission) *Lifecycle {
	return sub.Claim(func() any {
		l := newLifecycle(sub.Kind)
		v.start(ctx, sub, l)
		return l
	}).(*Lifecycle)
}

// Replay presents a stored result as an already fulfilled lifecycle.
func (v *Verifier) Replay(result models.VerificationResult) *Lifecycle {
	l := newLifecycle("history")
	l.resolve(StateFulfilled, Outcome{
		Result:       &result,
		Presentation: result.Presentation(),
		Historical:   true,
	})
	submissionsTotal.WithLabelValues("history", outcomeReplayed).Inc()
	return l
}

func (v *Verifier) start(ctx context.Context, sub *models.Submission, l *Lifecycle) {
	select {
	case <-v.session.Ready():
		v.proceed(ctx, sub, l)
	default:
		go func() {
			select {
			case <-v.session.Ready():
				v.proceed(ctx, sub, l)
			case <-ctx.Done():
				v.finish(ctx, sub, l, StateFailed, Outcome{Err: ctx.Err(), Message: msgCancelled})
			}
		}()
	}
}

// proceed runs the checks that need no network and dispatches the request.
func (v *Verifier) proceed(ctx context.Context, sub *models.Submission, l *Lifecycle) {
	snap := v.session.Snapshot()
	if !snap.IsAuthenticated() {
		v.finish(ctx, sub, l, StateFailed, Outcome{
			Err:             client.ErrUnauthenticated,
			Message:         client.MessageOf(client.ErrUnauthenticated),
			RedirectToLogin: true,
		})
		return
	}
	if auth.Expired(snap.Token, v.now()) {
		v.finish(ctx, sub, l, StateFailed, Outcome{
			Err:             fmt.Errorf("%w: token expired", client.ErrUnauthenticated),
			Message:         client.MessageOf(client.ErrTokenRejected),
			RedirectToLogin: true,
		})
		return
	}

	switch sub.Kind {
	case models.KindText, models.KindLink, models.KindImage:
	case models.KindVideo:
		v.finish(ctx, sub, l, StateFulfilled, Outcome{Unsupported: true, Message: msgVideoUnsupported})
		return
	default:
		v.finish(ctx, sub, l, StateFailed, Outcome{
			Err:     fmt.Errorf("%w: %q", client.ErrUnsupportedKind, sub.Kind),
			Message: msgUnsupportedKind,
		})
		return
	}

	if !l.markPending() {
		return
	}
	v.log.Debug(ctx, "submission dispatched", "submission_id", sub.ID, "kind", sub.Kind)

	go v.dispatch(context.WithoutCancel(ctx), sub, l, snap.Token)
}

func (v *Verifier) dispatch(ctx context.Context, sub *models.Submission, l *Lifecycle, token string) {
	var (
		res *models.VerificationResult
		err error
	)
	switch sub.Kind {
	case models.KindText:
		res, err = v.client.VerifyText(ctx, token, sub.Payload)
	case models.KindLink:
		res, err = v.client.VerifyLink(ctx, token, sub.Payload)
	case models.KindImage:
		res, err = v.client.VerifyImage(ctx, token, sub.Image)
	}

	if err != nil {
		v.finish(ctx, sub, l, StateFailed, Outcome{Err: err, Message: client.MessageOf(err)})
		return
	}
	v.finish(ctx, sub, l, StateFulfilled, Outcome{Result: res, Presentation: res.Presentation()})
}

func (v *Verifier) finish(ctx context.Context, sub *models.Submission, l *Lifecycle, state State, o Outcome) {
	if !l.resolve(state, o) {
		return
	}

	label := outcomeFulfilled
	switch {
	case o.Unsupported:
		label = outcomeUnsupported
	case state == StateFailed:
		label = outcomeFailed
	}
	submissionsTotal.WithLabelValues(string(sub.Kind), label).Inc()

	if state == StateFailed {
		v.log.Warn(ctx, "verification failed", "submission_id", sub.ID, "kind", sub.Kind, "error", o.Err)
		return
	}
	if o.Result != nil {
		v.log.Info(ctx, "verification completed", "submission_id", sub.ID, "kind", sub.Kind, "verdict", o.Result.Verdict)
	}
}
