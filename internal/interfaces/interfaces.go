package interfaces

import (
	"context"

	"citizen-impact/client/internal/model"
)

// This file defines the contracts between the conversation engine and its
// collaborators. The controller and registry depend on these interfaces
// rather than on concrete implementations, which keeps them testable
// without a network or a terminal.

// Backend is the client's view of the answering/session service.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (*model.Credentials, error)
	SignUp(ctx context.Context, name, email, password string) (*model.Credentials, error)
	ListSessions(ctx context.Context, email string) ([]model.ChatSession, error)
	CreateSession(ctx context.Context, email, title string) (*model.ChatSession, error)
	History(ctx context.Context, sessionID string) ([]model.Message, error)
	Chat(ctx context.Context, message, sessionID string) (string, error)
}
