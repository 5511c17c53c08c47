package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cosmic/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultTitle is given to sessions created without a title. It is replaced
// by a title derived from the first user message once the session has a reply.
const DefaultTitle = "New Cosmic Chat"

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Settings are the per-session generation overrides. An empty Model defers
// to whichever provider is serving when the message is sent.
type Settings struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// MessageMetadata describes how an assistant reply was produced.
type MessageMetadata struct {
	Model          string           `json:"model,omitempty"`
	Tokens         int              `json:"tokens"`
	ResponseTimeMs int64            `json:"responseTime"`
	Context        model.ContextTag `json:"context,omitempty"`
}

// Message represents a stored chat message
type Message struct {
	ID        int64            `json:"id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// Session represents a chat session
type Session struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId,omitempty"`
	Title        string           `json:"title"`
	Context      model.ContextTag `json:"context"`
	Settings     Settings         `json:"settings"`
	Messages     []Message        `json:"messages"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	LastActivity time.Time        `json:"lastActivity"`
}

// SessionMetadata is a lightweight version of Session for listing
type SessionMetadata struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Context      model.ContextTag `json:"context"`
	MessageCount int              `json:"messageCount"`
	CreatedAt    time.Time        `json:"createdAt"`
	LastActivity time.Time        `json:"lastActivity"`
}

// ModelMessages converts stored messages to the provider-facing shape.
func ModelMessages(messages []Message) []model.Message {
	out := make([]model.Message, len(messages))
	for i, m := range messages {
		out[i] = model.Message{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}
	return out
}

// SessionStorage handles session persistence in a SQLite database.
type SessionStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionStorage opens (or creates) sessions.db under dataDir.
func NewSessionStorage(dataDir string) (*SessionStorage, error) {
	return Open(filepath.Join(dataDir, "sessions.db"))
}

// Open opens the session database at dsn.
func Open(dsn string) (*SessionStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; serialize through a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &SessionStorage{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}

	if err := storage.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (s *SessionStorage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		context TEXT NOT NULL,
		settings TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		last_activity DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, last_activity);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_login DATETIME
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Create stores a new empty session. An empty title becomes DefaultTitle,
// an empty tag the default context.
func (s *SessionStorage) Create(ctx context.Context, userID, title string, tag model.ContextTag, settings Settings) (*Session, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	if tag == "" {
		tag = model.DefaultContext
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}

	now := s.now()
	session := &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		Context:      tag,
		Settings:     settings,
		Messages:     []Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActivity: now,
	}

	query := `
	INSERT INTO sessions (id, user_id, title, context, settings, created_at, updated_at, last_activity)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Title,
		string(session.Context),
		string(settingsJSON),
		session.CreatedAt,
		session.UpdatedAt,
		session.LastActivity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Load returns the session with all of its messages in order.
func (s *SessionStorage) Load(ctx context.Context, id string) (*Session, error) {
	query := `
	SELECT id, user_id, title, context, settings, created_at, updated_at, last_activity
	FROM sessions
	WHERE id = ?
	`

	var (
		session      Session
		tag          string
		settingsJSON string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.Title,
		&tag,
		&settingsJSON,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.LastActivity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session.Context = model.ContextTag(tag)
	if err := json.Unmarshal([]byte(settingsJSON), &session.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	session.Messages, err = s.messages(ctx, id, 0)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// messages returns the session's messages oldest first. limit > 0 keeps
// only the newest limit messages.
func (s *SessionStorage) messages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	query := `
	SELECT id, role, content, metadata, created_at
	FROM messages
	WHERE session_id = ?
	ORDER BY id DESC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var (
			msg      Message
			metadata string
		)
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &metadata, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if metadata != "" {
			msg.Metadata = &MessageMetadata{}
			if err := json.Unmarshal([]byte(metadata), msg.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode message metadata: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// History returns the newest n messages of a session in chronological order.
func (s *SessionStorage) History(ctx context.Context, sessionID string, n int) ([]model.Message, error) {
	msgs, err := s.messages(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}
	return ModelMessages(msgs), nil
}

// AppendMessages adds messages to a session in one transaction and bumps its
// activity time. A session still carrying DefaultTitle is renamed after its
// first user message once it holds at least two messages.
func (s *SessionStorage) AppendMessages(ctx context.Context, sessionID string, msgs ...Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var title string
	err = tx.QueryRowContext(ctx, `SELECT title FROM sessions WHERE id = ?`, sessionID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	for _, msg := range msgs {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		var metadata string
		if msg.Metadata != nil {
			b, err := json.Marshal(msg.Metadata)
			if err != nil {
				return fmt.Errorf("failed to encode message metadata: %w", err)
			}
			metadata = string(b)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
			sessionID, msg.Role, msg.Content, metadata, msg.Timestamp.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if title == DefaultTitle {
		newTitle, err := derivedTitle(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if newTitle != "" {
			title = newTitle
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET title = ?, updated_at = ?, last_activity = ? WHERE id = ?`,
		title, now, now, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return tx.Commit()
}

func derivedTitle(ctx context.Context, tx *sql.Tx, sessionID string) (string, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&count); err != nil {
		return "", fmt.Errorf("failed to count messages: %w", err)
	}
	if count < 2 {
		return "", nil
	}

	var first string
	err := tx.QueryRowContext(ctx,
		`SELECT content FROM messages WHERE session_id = ? AND role = ? ORDER BY id LIMIT 1`,
		sessionID, model.RoleUser,
	).Scan(&first)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load first message: %w", err)
	}

	return GenerateTitle(first), nil
}

// List returns a user's sessions, most recently active first. limit <= 0
// means no limit.
func (s *SessionStorage) List(ctx context.Context, userID string, limit int) ([]SessionMetadata, error) {
	query := `
	SELECT s.id, s.title, s.context, s.created_at, s.last_activity,
		(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
	FROM sessions s
	WHERE s.user_id = ?
	ORDER BY s.last_activity DESC, s.rowid DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return scanMetadata(rows)
}

func scanMetadata(rows *sql.Rows) ([]SessionMetadata, error) {
	sessions := []SessionMetadata{}
	for rows.Next() {
		var (
			meta SessionMetadata
			tag  string
		)
		if err := rows.Scan(&meta.ID, &meta.Title, &tag, &meta.CreatedAt, &meta.LastActivity, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		meta.Context = model.ContextTag(tag)
		sessions = append(sessions, meta)
	}

	return sessions, rows.Err()
}

// Delete removes a session and its messages.
func (s *SessionStorage) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return tx.Commit()
}

func (s *SessionStorage) Close() error {
	return s.db.Close()
}

// GenerateTitle derives a session title from the first user message:
// at most 50 characters, longer text is cut to 47 and gets "...".
func GenerateTitle(firstMessage string) string {
	title := strings.Join(strings.Fields(firstMessage), " ")
	if title == "" {
		return DefaultTitle
	}

	runes := []rune(title)
	if len(runes) > 50 {
		title = string(runes[:47]) + "..."
	}
	return title
}
