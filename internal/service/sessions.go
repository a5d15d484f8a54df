package service

import (
	"context"
	"time"

	"formbuilder/internal/auth"
	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/logging"
	"formbuilder/internal/repository"
)

// sessionRevoker ends sessions in both places they live: the session table and
// the token revocation list checked by the auth middleware.
type sessionRevoker struct {
	sessions repository.SessionRepository
	tokens   auth.TokenStoreInterface
	logger   logging.Logger
}

func newSessionRevoker(sessions repository.SessionRepository, tokens auth.TokenStoreInterface, logger logging.Logger) *sessionRevoker {
	return &sessionRevoker{sessions: sessions, tokens: tokens, logger: logger}
}

func (r *sessionRevoker) revokeAll(ctx context.Context, userID uint) error {
	sessions, err := r.sessions.ListByUserID(ctx, userID)
	if err != nil {
		return apperrors.Internal("list sessions", err)
	}
	for _, session := range sessions {
		r.revokeToken(ctx, session.TokenID, session.ExpiresAt)
	}
	if err := r.sessions.DeleteByUserID(ctx, userID); err != nil {
		return apperrors.Internal("delete sessions", err)
	}

	r.logger.Info(ctx, "sessions revoked", "user_id", userID, "count", len(sessions))
	return nil
}

// revokeToken logs failures; the token still expires on its own.
func (r *sessionRevoker) revokeToken(ctx context.Context, tokenID string, expiresAt time.Time) {
	if err := r.tokens.RevokeToken(ctx, tokenID, time.Until(expiresAt)); err != nil {
		r.logger.Warn(ctx, "revoke token", "token_id", tokenID, "error", err.Error())
	}
}
