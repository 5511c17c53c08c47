package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cosmic/model"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// User is a registered account. Sessions reference it by ID.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// SetPassword stores a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UserStats summarizes a user's chat activity.
type UserStats struct {
	TotalSessions int `json:"totalSessions"`
	TotalMessages int `json:"totalMessages"`
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new account. Usernames and emails are unique;
// a clash with either returns ErrUserExists.
func (s *SessionStorage) CreateUser(ctx context.Context, username, email, password string) (*User, error) {
	user := &User{
		ID:        uuid.New().String(),
		Username:  strings.TrimSpace(username),
		Email:     NormalizeEmail(email),
		CreatedAt: s.now(),
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`,
		user.Email, user.Username,
	).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if n > 0 {
		return nil, ErrUserExists
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SessionStorage) userWhere(ctx context.Context, clause string, arg any) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at, last_login FROM users WHERE ` + clause

	var (
		user      User
		lastLogin sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&lastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

func (s *SessionStorage) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.userWhere(ctx, `email = ?`, NormalizeEmail(email))
}

func (s *SessionStorage) UserByID(ctx context.Context, id string) (*User, error) {
	return s.userWhere(ctx, `id = ?`, id)
}

// TouchLogin records a successful login.
func (s *SessionStorage) TouchLogin(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, s.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Stats counts the sessions a user owns and the messages in them.
func (s *SessionStorage) Stats(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats
	err := s.db.QueryRowContext(ctx, `
	SELECT
		(SELECT COUNT(*) FROM sessions WHERE user_id = ?),
		(SELECT COUNT(*) FROM messages m JOIN sessions s ON s.id = m.session_id WHERE s.user_id = ?)
	`, userID, userID).Scan(&stats.TotalSessions, &stats.TotalMessages)
	if err != nil {
		return stats, fmt.Errorf("failed to count user activity: %w", err)
	}
	return stats, nil
}

// Page returns one page of a user's sessions, most recently active first,
// along with the total number of matching sessions. An empty tag matches
// every context.
func (s *SessionStorage) Page(ctx context.Context, userID string, tag model.ContextTag, offset, limit int) ([]SessionMetadata, int, error) {
	where := `WHERE s.user_id = ?`
	args := []any{userID}
	if tag != "" {
		where += ` AND s.context = ?`
		args = append(args, string(tag))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions s `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := `
	SELECT s.id, s.title, s.context, s.created_at, s.last_activity,
		(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
	FROM sessions s
	` + where + `
	ORDER BY s.last_activity DESC, s.rowid DESC
	LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanMetadata(rows)
	return sessions, total, err
}

// Export loads every session a user owns, with messages, most recently
// active first.
func (s *SessionStorage) Export(ctx context.Context, userID string) ([]*Session, error) {
	metas, err := s.List(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, len(metas))
	for _, meta := range metas {
		session, err := s.Load(ctx, meta.ID)
		if errors.Is(err, ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// DeleteUserData removes a user's account together with every session and
// message they own.
func (s *SessionStorage) DeleteUserData(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE session_id IN (SELECT id FROM sessions WHERE user_id = ?)`, userID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return tx.Commit()
}
