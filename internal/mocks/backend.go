// Package mocks provides hand-written testify mocks for the collaborator
// interfaces, used by the registry and controller tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"citizen-impact/client/internal/model"
)

type MockBackend struct {
	mock.Mock
}

func NewMockBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBackend {
	m := &MockBackend{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBackend) SignIn(ctx context.Context, email, password string) (*model.Credentials, error) {
	args := m.Called(ctx, email, password)
	creds, _ := args.Get(0).(*model.Credentials)
	return creds, args.Error(1)
}

func (m *MockBackend) SignUp(ctx context.Context, name, email, password string) (*model.Credentials, error) {
	args := m.Called(ctx, name, email, password)
	creds, _ := args.Get(0).(*model.Credentials)
	return creds, args.Error(1)
}

func (m *MockBackend) ListSessions(ctx context.Context, email string) ([]model.ChatSession, error) {
	args := m.Called(ctx, email)
	sessions, _ := args.Get(0).([]model.ChatSession)
	return sessions, args.Error(1)
}

func (m *MockBackend) CreateSession(ctx context.Context, email, title string) (*model.ChatSession, error) {
	args := m.Called(ctx, email, title)
	session, _ := args.Get(0).(*model.ChatSession)
	return session, args.Error(1)
}

func (m *MockBackend) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	args := m.Called(ctx, sessionID)
	messages, _ := args.Get(0).([]model.Message)
	return messages, args.Error(1)
}

func (m *MockBackend) Chat(ctx context.Context, message, sessionID string) (string, error) {
	args := m.Called(ctx, message, sessionID)
	return args.String(0), args.Error(1)
}
