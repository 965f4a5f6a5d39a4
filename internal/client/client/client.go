package client

import (
	"context"

	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/filex"
)

// Client is the VerifyNow backend API. The bearer token is passed per call;
// the client itself holds no session state.
type Client interface {
	// VerifyToken re-validates token and returns the profile it belongs to.
	VerifyToken(ctx context.Context, token string) (models.UserProfile, error)
	// GoogleLogin exchanges a Google ID token for a session token.
	GoogleLogin(ctx context.Context, idToken string) (string, models.UserProfile, error)

	VerifyText(ctx context.Context, token, text string) (*models.VerificationResult, error)
	VerifyLink(ctx context.Context, token, link string) (*models.VerificationResult, error)
	VerifyImage(ctx context.Context, token string, img *filex.Image) (*models.VerificationResult, error)

	History(ctx context.Context, token string, limit int) ([]models.HistoryRecord, error)
}
