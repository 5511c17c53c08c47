package storage

import (
	"context"
	"testing"

	"cosmic/model"

	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "ada", "  Ada@Example.COM ", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "ada@example.com", user.Email)
	require.NotEqual(t, "hunter22", user.PasswordHash)
	require.Nil(t, user.LastLogin)

	loaded, err := s.UserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, loaded.ID)
	require.True(t, loaded.CheckPassword("hunter22"))
	require.False(t, loaded.CheckPassword("hunter23"))

	_, err = s.CreateUser(ctx, "someone-else", "ada@example.com", "secret1")
	require.ErrorIs(t, err, ErrUserExists)
	_, err = s.CreateUser(ctx, "ada", "other@example.com", "secret1")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestUserLookupMissing(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.UserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = s.UserByID(ctx, "nope")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, s.TouchLogin(ctx, "nope"), ErrUserNotFound)
}

func TestTouchLogin(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "grace", "grace@example.com", "cobol59")
	require.NoError(t, err)
	require.NoError(t, s.TouchLogin(ctx, user.ID))

	loaded, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLogin)
	require.True(t, loaded.LastLogin.After(loaded.CreatedAt))
}

func seedUserSessions(t *testing.T, s *SessionStorage, userID string) []*Session {
	t.Helper()
	ctx := context.Background()

	var sessions []*Session
	for _, tag := range []model.ContextTag{model.ContextCosmic, model.ContextAerospace, model.ContextCosmic} {
		session, err := s.Create(ctx, userID, "", tag, DefaultSettings())
		require.NoError(t, err)
		require.NoError(t, s.AppendMessages(ctx, session.ID,
			Message{Role: model.RoleUser, Content: "Tell me about " + string(tag)},
			Message{Role: model.RoleAssistant, Content: "Sure."},
		))
		sessions = append(sessions, session)
	}
	return sessions
}

func TestStats(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	seedUserSessions(t, s, "u1")
	seedUserSessions(t, s, "u2")

	stats, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, UserStats{TotalSessions: 3, TotalMessages: 6}, stats)

	stats, err = s.Stats(ctx, "nobody")
	require.NoError(t, err)
	require.Zero(t, stats.TotalSessions)
	require.Zero(t, stats.TotalMessages)
}

func TestPage(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	sessions := seedUserSessions(t, s, "u1")

	page, total, err := s.Page(ctx, "u1", "", 0, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 2)
	require.Equal(t, sessions[2].ID, page[0].ID)
	require.Equal(t, 2, page[0].MessageCount)

	page, total, err = s.Page(ctx, "u1", "", 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 1)
	require.Equal(t, sessions[0].ID, page[0].ID)

	page, total, err = s.Page(ctx, "u1", model.ContextAerospace, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, page, 1)
	require.Equal(t, sessions[1].ID, page[0].ID)
}

func TestExport(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	seedUserSessions(t, s, "u1")
	seedUserSessions(t, s, "u2")

	exported, err := s.Export(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, exported, 3)
	for _, session := range exported {
		require.Equal(t, "u1", session.UserID)
		require.Len(t, session.Messages, 2)
	}
}

func TestDeleteUserData(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "linus", "linus@example.com", "penguin")
	require.NoError(t, err)
	mine := seedUserSessions(t, s, user.ID)
	theirs := seedUserSessions(t, s, "someone-else")

	require.NoError(t, s.DeleteUserData(ctx, user.ID))

	_, err = s.UserByID(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = s.Load(ctx, mine[0].ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	var orphans int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE session_id NOT IN (SELECT id FROM sessions)`).Scan(&orphans))
	require.Zero(t, orphans)

	other, err := s.Load(ctx, theirs[0].ID)
	require.NoError(t, err)
	require.Len(t, other.Messages, 2)
}
