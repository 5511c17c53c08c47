package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"cosmic/model"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SessionStorage {
	t.Helper()
	s, err := NewSessionStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Deterministic, strictly increasing clock
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestCreateAndLoad(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "user-1", "", "", DefaultSettings())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, DefaultTitle, created.Title)
	require.Equal(t, model.ContextCosmic, created.Context)

	loaded, err := s.Load(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "user-1", loaded.UserID)
	require.Equal(t, DefaultSettings(), loaded.Settings)
	require.Empty(t, loaded.Messages)
	require.True(t, loaded.CreatedAt.Equal(created.CreatedAt))
}

func TestLoadMissing(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Load(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAppendMessagesAndTitle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	session, err := s.Create(ctx, "", "", model.ContextAerospace, DefaultSettings())
	require.NoError(t, err)

	require.NoError(t, s.AppendMessages(ctx, session.ID, Message{Role: model.RoleUser, Content: "How do ion thrusters work?"}))

	loaded, err := s.Load(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, DefaultTitle, loaded.Title, "title changes only once there is a reply")

	require.NoError(t, s.AppendMessages(ctx, session.ID, Message{
		Role:    model.RoleAssistant,
		Content: "They accelerate ions with an electric field.",
		Metadata: &MessageMetadata{
			Model:          "gpt-3.5-turbo",
			Tokens:         57,
			ResponseTimeMs: 812,
			Context:        model.ContextAerospace,
		},
	}))

	loaded, err = s.Load(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, "How do ion thrusters work?", loaded.Title)
	require.Len(t, loaded.Messages, 2)
	require.Equal(t, model.RoleUser, loaded.Messages[0].Role)
	require.Nil(t, loaded.Messages[0].Metadata)
	require.NotNil(t, loaded.Messages[1].Metadata)
	require.Equal(t, 57, loaded.Messages[1].Metadata.Tokens)
	require.True(t, loaded.LastActivity.After(loaded.CreatedAt))
}

func TestAppendKeepsCustomTitle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	session, err := s.Create(ctx, "", "Mission planning", model.ContextTechnical, DefaultSettings())
	require.NoError(t, err)

	require.NoError(t, s.AppendMessages(ctx, session.ID,
		Message{Role: model.RoleUser, Content: "first"},
		Message{Role: model.RoleAssistant, Content: "second"},
	))

	loaded, err := s.Load(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, "Mission planning", loaded.Title)
}

func TestAppendToMissingSession(t *testing.T) {
	s := newTestStorage(t)
	err := s.AppendMessages(context.Background(), "nope", Message{Role: model.RoleUser, Content: "hi"})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHistoryWindow(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	session, err := s.Create(ctx, "", "", "", DefaultSettings())
	require.NoError(t, err)

	for i := 1; i <= 15; i++ {
		role := model.RoleUser
		if i%2 == 0 {
			role = model.RoleAssistant
		}
		require.NoError(t, s.AppendMessages(ctx, session.ID, Message{Role: role, Content: strings.Repeat("x", i)}))
	}

	history, err := s.History(ctx, session.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 10)
	require.Len(t, history[0].Content, 6)
	require.Len(t, history[9].Content, 15)
	require.Equal(t, model.RoleUser, history[9].Role)
}

func TestListOrdersByActivity(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	older, err := s.Create(ctx, "user-1", "older", "", DefaultSettings())
	require.NoError(t, err)
	newer, err := s.Create(ctx, "user-1", "newer", "", DefaultSettings())
	require.NoError(t, err)
	_, err = s.Create(ctx, "user-2", "someone else", "", DefaultSettings())
	require.NoError(t, err)

	list, err := s.List(ctx, "user-1", 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)

	// Activity on the older session moves it to the top
	require.NoError(t, s.AppendMessages(ctx, older.ID, Message{Role: model.RoleUser, Content: "ping"}))

	list, err = s.List(ctx, "user-1", 20)
	require.NoError(t, err)
	require.Equal(t, older.ID, list[0].ID)
	require.Equal(t, 1, list[0].MessageCount)

	limited, err := s.List(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	session, err := s.Create(ctx, "", "", "", DefaultSettings())
	require.NoError(t, err)
	require.NoError(t, s.AppendMessages(ctx, session.ID, Message{Role: model.RoleUser, Content: "hi"}))

	require.NoError(t, s.Delete(ctx, session.ID))

	_, err = s.Load(ctx, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	history, err := s.History(ctx, session.ID, 10)
	require.NoError(t, err)
	require.Empty(t, history)

	require.ErrorIs(t, s.Delete(ctx, session.ID), ErrSessionNotFound)
}

func TestGenerateTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "Hello Mars", "Hello Mars"},
		{"exactly fifty", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"long", strings.Repeat("b", 51), strings.Repeat("b", 47) + "..."},
		{"newlines collapsed", "line one\nline two", "line one line two"},
		{"blank", "   ", DefaultTitle},
		{"multibyte", strings.Repeat("🚀", 60), strings.Repeat("🚀", 47) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, GenerateTitle(tt.input))
		})
	}
}
