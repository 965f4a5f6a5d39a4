package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/client"
	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/filex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	verifyTextPath  = "/api/verify-text"
	verifyLinkPath  = "/api/verify-link"
	verifyImagePath = "/api/verify-image"
)

func loggedIn(t *testing.T) *testEnv {
	t.Helper()
	e := newTestEnv(t)
	require.NoError(t, e.session.Login(testCtx(t), "tok", models.UserProfile{ID: "1", Email: "a@b.c"}))
	return e
}

func submission(t *testing.T, kind models.Kind, payload string) *models.Submission {
	t.Helper()
	s, err := models.NewSubmission(kind, payload)
	require.NoError(t, err)
	return s
}

func TestVerifier_TextFulfilled(t *testing.T) {
	e := loggedIn(t)
	e.backend.handle(verifyTextPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Breaking news...", body["text"])
		writeJSON(w, http.StatusOK, `{"verdict":"Fake","summary":"Fabricated story.","proofs":["No credible outlet reported it"]}`)
	})

	before := testutil.ToFloat64(submissionsTotal.WithLabelValues("text", outcomeFulfilled))
	l := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "Breaking news..."))

	o, err := l.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateFulfilled, l.State())
	require.NoError(t, o.Err)
	assert.Equal(t, models.VerdictFake, o.Presentation)
	require.NotNil(t, o.Result)
	assert.Equal(t, "Fabricated story.", o.Result.Summary)
	assert.Equal(t, 85, o.Result.Score())
	assert.False(t, o.Historical)
	assert.Equal(t, 1, e.backend.count(verifyTextPath))
	assert.Equal(t, before+1, testutil.ToFloat64(submissionsTotal.WithLabelValues("text", outcomeFulfilled)))
}

func TestVerifier_LinkAndImageEndpoints(t *testing.T) {
	e := loggedIn(t)
	e.backend.reply(verifyLinkPath, http.StatusOK, `{"verdict":"Real","safety_status":"Safe"}`)
	e.backend.reply(verifyImagePath, http.StatusOK, `{"verdict":"Misleading","image_analysis":"a crowd"}`)

	link := e.verifier.Submit(testCtx(t), submission(t, models.KindLink, "example.com"))
	o, err := link.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, models.VerdictVerified, o.Presentation)

	img, err := models.NewImageSubmission(&filex.Image{Name: "a.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)
	o, err = e.verifier.Submit(testCtx(t), img).Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, models.VerdictPossiblyMisleading, o.Presentation)
	assert.Equal(t, "a crowd", o.Result.ImageAnalysis)

	assert.Equal(t, 1, e.backend.count(verifyLinkPath))
	assert.Equal(t, 1, e.backend.count(verifyImagePath))
	assert.Zero(t, e.backend.count(verifyTextPath))
}

func TestVerifier_NoTokenFailsWithoutNetwork(t *testing.T) {
	for _, kind := range []models.Kind{models.KindText, models.KindLink, models.KindVideo} {
		t.Run(string(kind), func(t *testing.T) {
			e := newTestEnv(t)

			l := e.verifier.Submit(testCtx(t), submission(t, kind, "payload"))

			assert.Equal(t, StateFailed, l.State())
			o, ok := l.Outcome()
			require.True(t, ok)
			require.ErrorIs(t, o.Err, client.ErrUnauthenticated)
			assert.True(t, o.RedirectToLogin)
			assert.NotEmpty(t, o.Message)
			assert.Zero(t, e.backend.total())
		})
	}
}

func TestVerifier_VideoUnsupported(t *testing.T) {
	e := loggedIn(t)

	l := e.verifier.Submit(testCtx(t), submission(t, models.KindVideo, "x"))

	assert.Equal(t, StateFulfilled, l.State())
	o, ok := l.Outcome()
	require.True(t, ok)
	assert.True(t, o.Unsupported)
	assert.Nil(t, o.Result)
	assert.Equal(t, "Video verification is not yet implemented.", o.Message)
	assert.Zero(t, e.backend.total())
}

func TestVerifier_UnknownKind(t *testing.T) {
	e := loggedIn(t)

	l := e.verifier.Submit(testCtx(t), &models.Submission{Kind: "audio", Payload: "x"})

	o, err := l.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateFailed, l.State())
	require.ErrorIs(t, o.Err, client.ErrUnsupportedKind)
	assert.Equal(t, "Unsupported verification type.", o.Message)
	assert.Zero(t, e.backend.total())
}

func TestVerifier_TokenExpiredThenRefreshClears(t *testing.T) {
	e := loggedIn(t)
	e.backend.reply(verifyTextPath, http.StatusUnauthorized, `{"message":"token expired"}`)
	e.backend.reply(verifyTokenPath, http.StatusUnauthorized, `{"valid":false,"message":"Token expired"}`)

	o, err := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "claim")).Wait(testCtx(t))
	require.NoError(t, err)
	require.ErrorIs(t, o.Err, client.ErrBackendRejected)
	assert.Equal(t, "token expired", o.Message)
	assert.True(t, client.IsUnauthorized(o.Err))

	e.session.Refresh(testCtx(t))
	assert.False(t, e.session.IsAuthenticated())
	assert.Equal(t, StatusUnauthenticated, e.session.Status())
}

func TestVerifier_FailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		target  error
		message string
	}{
		{"backend message", http.StatusBadRequest, `{"message":"No text provided"}`, client.ErrBackendRejected, "No text provided"},
		{"unparsable error body", http.StatusInternalServerError, `oops`, client.ErrBackendRejected, "Failed to verify content."},
		{"malformed success", http.StatusOK, `{"verdict":`, client.ErrMalformedResponse, client.MessageOf(client.ErrMalformedResponse)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := loggedIn(t)
			e.backend.reply(verifyTextPath, tt.status, tt.body)

			l := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "claim"))
			o, err := l.Wait(testCtx(t))
			require.NoError(t, err)

			assert.Equal(t, StateFailed, l.State())
			require.ErrorIs(t, o.Err, tt.target)
			assert.Equal(t, tt.message, o.Message)
			assert.False(t, o.RedirectToLogin)
		})
	}
}

func TestVerifier_NetworkFailureIsTerminal(t *testing.T) {
	e := loggedIn(t)
	e.backend.srv.Close()

	l := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "claim"))
	o, err := l.Wait(testCtx(t))
	require.NoError(t, err)

	assert.Equal(t, StateFailed, l.State())
	require.ErrorIs(t, o.Err, client.ErrNetworkFailure)
}

func TestVerifier_ExactlyOnce(t *testing.T) {
	e := loggedIn(t)
	release := make(chan struct{})
	e.backend.handle(verifyTextPath, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, `{"verdict":"Real"}`)
	})

	sub := submission(t, models.KindText, "same")
	lifecycles := make([]*Lifecycle, 8)
	var wg sync.WaitGroup
	for i := range lifecycles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lifecycles[i] = e.verifier.Submit(testCtx(t), sub)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, StatePending, lifecycles[0].State())
	close(release)

	for _, l := range lifecycles {
		assert.Same(t, lifecycles[0], l)
	}
	_, err := lifecycles[0].Wait(testCtx(t))
	require.NoError(t, err)

	again := e.verifier.Submit(testCtx(t), sub)
	assert.Same(t, lifecycles[0], again)
	assert.Equal(t, 1, e.backend.count(verifyTextPath))
}

func TestVerifier_DistinctSubmissionsAreIndependent(t *testing.T) {
	e := loggedIn(t)
	e.backend.reply(verifyTextPath, http.StatusOK, `{"verdict":"Real"}`)

	a := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "same"))
	b := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "same"))
	assert.NotSame(t, a, b)

	_, err := a.Wait(testCtx(t))
	require.NoError(t, err)
	_, err = b.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 2, e.backend.count(verifyTextPath))
}

func TestVerifier_WaitGivesUpButRequestCompletes(t *testing.T) {
	e := loggedIn(t)
	release := make(chan struct{})
	e.backend.handle(verifyTextPath, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, `{"verdict":"Real"}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	l := e.verifier.Submit(ctx, submission(t, models.KindText, "claim"))
	cancel()

	_, err := l.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatePending, l.State())

	close(release)
	o, err := l.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, models.VerdictVerified, o.Presentation)
}

func TestVerifier_WaitsForLoadingSession(t *testing.T) {
	e := loggedIn(t)
	release := make(chan struct{})
	e.backend.handle(verifyTokenPath, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, `{"valid":true,"user":{"id":"1","email":"a@b.c"}}`)
	})
	e.backend.reply(verifyTextPath, http.StatusOK, `{"verdict":"Fake"}`)

	ready := e.session.Initialize(testCtx(t))
	l := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "claim"))
	assert.Equal(t, StateIdle, l.State())
	assert.Zero(t, e.backend.count(verifyTextPath))

	close(release)
	waitClosed(t, ready)

	o, err := l.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, models.VerdictFake, o.Presentation)
}

func TestVerifier_LoadingSessionRejectedFailsUnauthenticated(t *testing.T) {
	e := loggedIn(t)
	e.backend.reply(verifyTokenPath, http.StatusUnauthorized, `{"valid":false}`)

	e.session.Initialize(testCtx(t))
	o, err := e.verifier.Submit(testCtx(t), submission(t, models.KindText, "claim")).Wait(testCtx(t))
	require.NoError(t, err)
	require.ErrorIs(t, o.Err, client.ErrUnauthenticated)
	assert.Zero(t, e.backend.count(verifyTextPath))
}

func TestVerifier_CancelledWhileSessionLoading(t *testing.T) {
	e := loggedIn(t)
	release := make(chan struct{})
	defer close(release)
	e.backend.handle(verifyTokenPath, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, `{"valid":true,"user":{"email":"a@b.c"}}`)
	})
	e.session.Initialize(testCtx(t))

	ctx, cancel := context.WithCancel(context.Background())
	l := e.verifier.Submit(ctx, submission(t, models.KindText, "claim"))
	cancel()

	o, err := l.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, StateFailed, l.State())
	assert.True(t, errors.Is(o.Err, context.Canceled))
	assert.Zero(t, e.backend.count(verifyTextPath))
}

func TestVerifier_Replay(t *testing.T) {
	e := newTestEnv(t)
	rec := models.HistoryRecord{ID: "9", Verdict: models.BackendUnverified, Summary: "old"}

	l := e.verifier.Replay(rec.Result())

	assert.Equal(t, StateFulfilled, l.State())
	select {
	case <-l.Done():
	default:
		t.Fatal("replayed lifecycle must already be done")
	}
	o, ok := l.Outcome()
	require.True(t, ok)
	assert.True(t, o.Historical)
	assert.Equal(t, models.VerdictPossiblyMisleading, o.Presentation)
	assert.Equal(t, 30, o.Result.Score())
	assert.Zero(t, e.backend.total())
}

func TestLifecycle_ResolveOnce(t *testing.T) {
	l := newLifecycle(models.KindText)
	_, ok := l.Outcome()
	assert.False(t, ok)

	require.True(t, l.markPending())
	require.False(t, l.markPending())
	require.True(t, l.resolve(StateFailed, Outcome{Message: "first"}))
	require.False(t, l.resolve(StateFulfilled, Outcome{Message: "second"}))

	o, ok := l.Outcome()
	require.True(t, ok)
	assert.Equal(t, "first", o.Message)
	assert.Equal(t, StateFailed, l.State())
	assert.Equal(t, "failed", l.State().String())
}

func TestVerifier_ExpiredTokenFailsBeforeDispatch(t *testing.T) {
	e := newTestEnv(t)
	ctx := testCtx(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, e.session.Login(ctx, expired, models.UserProfile{Email: "a@b.c"}))

	o, err := e.verifier.Submit(ctx, submission(t, models.KindText, "claim")).Wait(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, o.Err, client.ErrUnauthenticated)
	assert.True(t, o.RedirectToLogin)
	assert.Equal(t, "Your session has expired. Please log in again.", o.Message)
	assert.Zero(t, e.backend.total())
}

func TestVerifier_UnexpiredTokenDispatches(t *testing.T) {
	e := newTestEnv(t)
	ctx := testCtx(t)

	fresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, e.session.Login(ctx, fresh, models.UserProfile{Email: "a@b.c"}))
	e.backend.reply(verifyTextPath, http.StatusOK, `{"verdict":"Real"}`)

	o, err := e.verifier.Submit(ctx, submission(t, models.KindText, "claim")).Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, o.Err)
	assert.Equal(t, 1, e.backend.count(verifyTextPath))
}
