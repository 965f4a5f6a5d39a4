package services

import (
	"context"

	"github.com/dmitrijs2005/verifynow/internal/client/client"
	"github.com/dmitrijs2005/verifynow/internal/client/models"
	"github.com/dmitrijs2005/verifynow/internal/logging"
)

// HistoryService lists the session owner's past verifications.
type HistoryService struct {
	client  client.Client
	session SessionSource
	log     logging.Logger
}

// NewHistoryService builds a history service that reads the credential from
// session.
func NewHistoryService(c client.Client, session SessionSource, log logging.Logger) *HistoryService {
	return &HistoryService{client: c, session: session, log: log.With("component", "history")}
}

// List returns up to limit records, newest first as the backend orders them.
// A non-positive limit uses the backend default.
func (h *HistoryService) List(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	select {
	case <-h.session.Ready():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	snap := h.session.Snapshot()
	if !snap.IsAuthenticated() {
		return nil, client.ErrUnauthenticated
	}

	recs, err := h.client.History(ctx, snap.Token, limit)
	if err != nil {
		h.log.Warn(ctx, "failed to load history", "error", err)
		return nil, err
	}
	return recs, nil
}
