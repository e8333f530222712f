package model

import "time"

// Author identifies who produced a message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is a single entry in a conversation timeline. Messages are
// immutable once appended; ids are unique within a timeline and are either
// client-generated (local user input) or backend-issued (loaded history).
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession stores metadata about a persisted conversation thread. The
// server-assigned id is authoritative once the session exists; the client
// never mutates a session after creation.
type ChatSession struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"user_email"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity describes the signed-in user. A missing email means anonymous
// mode: sessions are never created or listed, and conversations live only
// in memory.
type Identity struct {
	DisplayName string `json:"user_name,omitempty"`
	Email       string `json:"user_email,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// Known reports whether a user identity is available for session ownership.
func (id Identity) Known() bool {
	return id.Email != ""
}

// Credentials is the payload returned by the /signin and /signup endpoints.
type Credentials struct {
	AccessToken string `json:"access_token"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email,omitempty"`
}
