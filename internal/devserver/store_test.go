package devserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "citizen-impact/client/internal/errors"
)

// The store is tested against go-sqlmock so the SQL it issues can be
// asserted without touching a real database file.
func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mockDB
}

func TestStore_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store, mockDB := setupStore(t)
		mockDB.ExpectExec("INSERT INTO users").
			WithArgs("ana@example.com", "Ana", "hash", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := store.CreateUser(ctx, &User{Email: "ana@example.com", Name: "Ana", PasswordHash: "hash", CreatedAt: time.Now()})

		assert.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Duplicate email maps to conflict", func(t *testing.T) {
		store, mockDB := setupStore(t)
		mockDB.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("UNIQUE constraint failed: users.email"))

		err := store.CreateUser(ctx, &User{Email: "ana@example.com"})

		assert.ErrorIs(t, err, app_errors.ErrConflict)
	})
}

func TestStore_UserByEmail_NotFound(t *testing.T) {
	store, mockDB := setupStore(t)
	mockDB.ExpectQuery("SELECT email, name, password_hash, created_at FROM users").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"email", "name", "password_hash", "created_at"}))

	_, err := store.UserByEmail(context.Background(), "ghost@example.com")

	assert.ErrorIs(t, err, app_errors.ErrNotFound)
}

func TestStore_SessionsByEmail(t *testing.T) {
	store, mockDB := setupStore(t)
	now := time.Now()
	mockDB.ExpectQuery("SELECT id, user_email, title, created_at FROM sessions").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_email", "title", "created_at"}).
			AddRow("s2", "ana@example.com", "Voting rights", now).
			AddRow("s1", "ana@example.com", "Supreme Court", now.Add(-time.Hour)))

	sessions, err := store.SessionsByEmail(context.Background(), "ana@example.com")

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID)
}

func TestStore_SaveMessageAndHistory(t *testing.T) {
	store, mockDB := setupStore(t)
	ctx := context.Background()

	mockDB.ExpectExec("INSERT INTO messages").
		WithArgs(sqlmock.AnyArg(), "sess-1", "user", "hello", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, store.SaveMessage(ctx, "sess-1", "user", "hello"))

	now := time.Now()
	mockDB.ExpectQuery("SELECT id, session_id, role, content, timestamp FROM messages").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "role", "content", "timestamp"}).
			AddRow("m1", "sess-1", "user", "hello", now).
			AddRow("m2", "sess-1", "assistant", "hi!", now.Add(time.Second)))

	history, err := store.History(ctx, "sess-1")

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
