package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formbuilder/internal/model"
)

func seedSession(t *testing.T, repo SessionRepository, userID uint, tokenID string, lastUsed, expires time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &model.Session{
		UserID:     userID,
		TokenID:    tokenID,
		LastUsedAt: lastUsed,
		ExpiresAt:  expires,
	}))
}

func lastUsedAt(t *testing.T, repo SessionRepository, userID uint, tokenID string) time.Time {
	t.Helper()
	sessions, err := repo.ListByUserID(context.Background(), userID)
	require.NoError(t, err)
	for _, s := range sessions {
		if s.TokenID == tokenID {
			return s.LastUsedAt
		}
	}
	t.Fatalf("session %s not found", tokenID)
	return time.Time{}
}

func TestSessionRepository_Touch(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	stale := now.Add(-time.Hour)
	recent := now.Add(-10 * time.Second)
	seedSession(t, repo, user.ID, "stale", stale, now.Add(time.Hour))
	seedSession(t, repo, user.ID, "recent", recent, now.Add(time.Hour))

	require.NoError(t, repo.Touch(ctx, "stale", now, time.Minute))
	require.NoError(t, repo.Touch(ctx, "recent", now, time.Minute))
	require.NoError(t, repo.Touch(ctx, "missing", now, time.Minute))

	assert.True(t, lastUsedAt(t, repo, user.ID, "stale").Equal(now))
	assert.True(t, lastUsedAt(t, repo, user.ID, "recent").Equal(recent))
}

func TestSessionRepository_ListActiveAndDeleteExpired(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	other := seedUser(t, db, "other@example.com")
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	seedSession(t, repo, user.ID, "live", now, now.Add(time.Hour))
	seedSession(t, repo, user.ID, "dead", now, now.Add(-time.Hour))
	seedSession(t, repo, other.ID, "other-dead", now, now.Add(-time.Minute))

	active, err := repo.ListActiveByUserID(ctx, user.ID, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "live", active[0].TokenID)

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	all, err := repo.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "live", all[0].TokenID)
}

func TestSessionRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	seedSession(t, repo, user.ID, "a", now, now.Add(time.Hour))
	seedSession(t, repo, user.ID, "b", now, now.Add(time.Hour))

	require.NoError(t, repo.DeleteByTokenID(ctx, "a"))
	require.NoError(t, repo.DeleteByTokenID(ctx, "a"))
	assert.Equal(t, int64(1), count(t, db, &model.Session{}, "user_id = ?", user.ID))

	require.NoError(t, repo.DeleteByUserID(ctx, user.ID))
	assert.Zero(t, count(t, db, &model.Session{}, "user_id = ?", user.ID))
}
