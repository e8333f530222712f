package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	app_errors "citizen-impact/client/internal/errors"
	"citizen-impact/client/internal/model"
)

// Store persists the dev server's users, sessions and messages in SQLite.
// Messages are keyed by session id regardless of whether that id refers to
// a persisted session or one of the client's fallback identifiers, matching
// the production backend's behavior.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// User is a registered account.
type User struct {
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUser registers an account. An already-registered email is a
// conflict.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.Email, user.Name, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already registered", app_errors.ErrConflict)
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

// UserByEmail looks up an account.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT email, name, password_hash, created_at FROM users WHERE email = ?`, email)

	var user User
	if err := row.Scan(&user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, app_errors.ErrNotFound
		}
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	return &user, nil
}

// CreateSession persists a new conversation thread and returns it with its
// server-assigned id.
func (s *Store) CreateSession(ctx context.Context, userEmail, title string) (*model.ChatSession, error) {
	session := &model.ChatSession{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_email, title, created_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserEmail, session.Title, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}
	return session, nil
}

// SessionsByEmail returns the sessions owned by an email, newest first.
func (s *Store) SessionsByEmail(ctx context.Context, email string) ([]model.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_email, title, created_at FROM sessions WHERE user_email = ? ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.ChatSession{}
	for rows.Next() {
		var session model.ChatSession
		if err := rows.Scan(&session.ID, &session.UserEmail, &session.Title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("could not scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// StoredMessage is one side of a persisted exchange, in the wire shape the
// /history endpoint returns.
type StoredMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SaveMessage appends one message to a session's history.
func (s *Store) SaveMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), sessionID, role, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("could not save message: %w", err)
	}
	return nil
}

// History returns a session's messages in chronological order.
func (s *Store) History(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, timestamp FROM messages WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not load history: %w", err)
	}
	defer rows.Close()

	messages := []StoredMessage{}
	for rows.Next() {
		var msg StoredMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("could not scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func isUniqueViolation(err error) bool {
	// go-sqlite3 reports constraint violations in the error text; matching
	// on it avoids importing driver-specific error codes here.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
