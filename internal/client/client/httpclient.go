package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/common"
	"github.com/dmitrijs2005/verifynow/internal/filex"
	"github.com/dmitrijs2005/verifynow/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	pathVerifyToken = "/api/verify-token"
	pathGoogleLogin = "/api/google-login"
	pathVerifyText  = "/api/verify-text"
	pathVerifyLink  = "/api/verify-link"
	pathVerifyImage = "/api/verify-image"
	pathHistory     = "/api/verification-history"

	// DefaultHistoryLimit is the page size the backend uses when none is given.
	DefaultHistoryLimit = 50
)

// HTTPClient talks to the VerifyNow backend over HTTP/JSON.
type HTTPClient struct {
	rc  *resty.Client
	log logging.Logger
}

// NewHTTPClient creates a client for baseURL. A zero timeout leaves requests
// unbounded.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}

	c := &HTTPClient{rc: rc, log: log}

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.log.Debug(resp.Request.Context(), "backend exchange",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"request_id", resp.Request.Header.Get(common.RequestIDHeaderName),
		)
		return nil
	})
	rc.OnError(func(req *resty.Request, err error) {
		c.log.Warn(req.Context(), "backend request failed",
			"method", req.Method,
			"url", req.URL,
			"request_id", req.Header.Get(common.RequestIDHeaderName),
			"error", err,
		)
	})

	return c
}

func (c *HTTPClient) request(ctx context.Context, token string) *resty.Request {
	r := c.rc.R().
		SetContext(ctx).
		SetHeader(common.RequestIDHeaderName, uuid.NewString())
	if token != "" {
		r.SetAuthToken(token)
	}
	return r
}

type tokenRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	Valid   bool                `json:"valid"`
	User    *models.UserProfile `json:"user"`
	Message string              `json:"message"`
}

// VerifyToken re-validates token and returns the normalized profile the
// backend reports for it.
func (c *HTTPClient) VerifyToken(ctx context.Context, token string) (models.UserProfile, error) {
	resp, err := c.request(ctx, "").
		SetBody(&tokenRequest{Token: token}).
		Post(pathVerifyToken)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	if !resp.IsSuccess() {
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrTokenRejected, backendError(resp, genericTokenMessage))
	}

	var out tokenResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return models.UserProfile{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if !out.Valid {
		return models.UserProfile{}, fmt.Errorf("%w: %s", ErrTokenRejected, out.Message)
	}
	if out.User == nil || out.User.Email == "" {
		return models.UserProfile{}, fmt.Errorf("%w: user profile missing", ErrMalformedResponse)
	}
	return out.User.Normalize(), nil
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type googleLoginResponse struct {
	Message string              `json:"message"`
	Token   string              `json:"token"`
	User    *models.UserProfile `json:"user"`
}

// GoogleLogin exchanges a Google ID token for a session token and profile.
func (c *HTTPClient) GoogleLogin(ctx context.Context, idToken string) (string, models.UserProfile, error) {
	resp, err := c.request(ctx, "").
		SetBody(&googleLoginRequest{IDToken: idToken}).
		Post(pathGoogleLogin)
	if err != nil {
		return "", models.UserProfile{}, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	if !resp.IsSuccess() {
		return "", models.UserProfile{}, backendError(resp, genericLoginMessage)
	}

	var out googleLoginResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", models.UserProfile{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if out.Token == "" || out.User == nil {
		return "", models.UserProfile{}, fmt.Errorf("%w: token or user missing", ErrMalformedResponse)
	}
	return out.Token, out.User.Normalize(), nil
}

type textRequest struct {
	Text string `json:"text"`
}

type linkRequest struct {
	URL string `json:"url"`
}

func (c *HTTPClient) VerifyText(ctx context.Context, token, text string) (*models.VerificationResult, error) {
	resp, err := c.request(ctx, token).
		SetBody(&textRequest{Text: text}).
		Post(pathVerifyText)
	return decodeResult(resp, err)
}

// VerifyLink sends link after NormalizeLink.
func (c *HTTPClient) VerifyLink(ctx context.Context, token, link string) (*models.VerificationResult, error) {
	resp, err := c.request(ctx, token).
		SetBody(&linkRequest{URL: NormalizeLink(link)}).
		Post(pathVerifyLink)
	return decodeResult(resp, err)
}

// VerifyImage uploads img as the multipart "image" field.
func (c *HTTPClient) VerifyImage(ctx context.Context, token string, img *filex.Image) (*models.VerificationResult, error) {
	if img == nil {
		return nil, models.ErrNoImage
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := c.request(ctx, token).
		SetMultipartField("image", img.Name, contentType, bytes.NewReader(img.Data)).
		Post(pathVerifyImage)
	return decodeResult(resp, err)
}

// History fetches up to limit records; a non-positive limit means
// DefaultHistoryLimit.
func (c *HTTPClient) History(ctx context.Context, token string, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	resp, err := c.request(ctx, token).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get(pathHistory)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	if !resp.IsSuccess() {
		return nil, backendError(resp, genericHistoryMessage)
	}

	var out []models.HistoryRecord
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return out, nil
}

func decodeResult(resp *resty.Response, err error) (*models.VerificationResult, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	if !resp.IsSuccess() {
		return nil, backendError(resp, genericVerifyMessage)
	}

	var out models.VerificationResult
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &out, nil
}

// backendError reads the "message" (or "error") field of a failed response,
// falling back to fallback when the body carries neither.
func backendError(resp *resty.Response, fallback string) *BackendError {
	msg := fallback
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		if m := jsonText(body.Message); m != "" {
			msg = m
		} else if m := jsonText(body.Error); m != "" {
			msg = m
		}
	}
	return &BackendError{StatusCode: resp.StatusCode(), Message: msg}
}

func jsonText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// NormalizeLink prepends https:// to a link that has no scheme.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	lower := strings.ToLower(link)
	if link == "" || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + link
}
