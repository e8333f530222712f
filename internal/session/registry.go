package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"citizen-impact/client/internal/interfaces"
	"citizen-impact/client/internal/model"
)

// titleLimit mirrors the web client: the session title is the first 30
// characters of the seed message, ellipsis-appended when truncated.
const titleLimit = 30

// Registry keeps the ordered list of persisted session summaries shown in
// the sidebar, newest first, and tracks which one is active. The controller
// is the only writer; the view reads snapshots.
type Registry struct {
	backend interfaces.Backend

	mu       sync.RWMutex
	sessions []model.ChatSession
	activeID string
}

func NewRegistry(backend interfaces.Backend) *Registry {
	return &Registry{backend: backend}
}

// Load fetches the session list owned by the identity. An anonymous
// identity or a failed request leaves the registry empty: an empty sidebar
// is a normal state ("no chats yet"), not an error.
func (r *Registry) Load(ctx context.Context, identity model.Identity) {
	if !identity.Known() {
		r.replace(nil)
		return
	}

	sessions, err := r.backend.ListSessions(ctx, identity.Email)
	if err != nil {
		slog.Warn("Could not load sessions, presenting an empty list", "error", err)
		r.replace(nil)
		return
	}
	r.replace(sessions)
}

// Ensure returns the active session, creating one first when none is
// selected. The new session takes its title from the seed message and is
// inserted at the front of the ordered list. The controller serializes send
// cycles, so Ensure runs at most once per pending send.
func (r *Registry) Ensure(ctx context.Context, identity model.Identity, seed string) (*model.ChatSession, error) {
	r.mu.RLock()
	active := r.activeID
	r.mu.RUnlock()

	if active != "" {
		if existing := r.find(active); existing != nil {
			return existing, nil
		}
		// Active id set but not yet synced into the list; creation already
		// happened this conversation.
		return &model.ChatSession{ID: active}, nil
	}

	created, err := r.backend.CreateSession(ctx, identity.Email, SeedTitle(seed))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.insertFront(*created)
	r.activeID = created.ID
	r.mu.Unlock()

	return created, nil
}

// Select marks id as the active session. It does not fetch history; that is
// the controller's job.
func (r *Registry) Select(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeID = id
}

// ActiveID returns the id of the active session, or "" when the current
// conversation has no persisted session yet.
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// Sessions returns a snapshot of the ordered session list.
func (r *Registry) Sessions() []model.ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]model.ChatSession, len(r.sessions))
	copy(snapshot, r.sessions)
	return snapshot
}

// Clear empties the registry and the active selection. Used on sign-out.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = nil
	r.activeID = ""
}

func (r *Registry) replace(sessions []model.ChatSession) {
	copied := make([]model.ChatSession, len(sessions))
	copy(copied, sessions)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = copied
}

// insertFront puts a session at the head of the list, removing any existing
// entry with the same id so each session appears exactly once.
func (r *Registry) insertFront(session model.ChatSession) {
	filtered := make([]model.ChatSession, 0, len(r.sessions)+1)
	filtered = append(filtered, session)
	for _, existing := range r.sessions {
		if existing.ID != session.ID {
			filtered = append(filtered, existing)
		}
	}
	r.sessions = filtered
}

func (r *Registry) find(id string) *model.ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			found := r.sessions[i]
			return &found
		}
	}
	return nil
}

// SeedTitle derives a session title from the first message of a
// conversation: the first 30 characters, with an ellipsis when the seed
// text is longer.
func SeedTitle(seed string) string {
	runes := []rune(strings.TrimSpace(seed))
	if len(runes) <= titleLimit {
		return string(runes)
	}
	return string(runes[:titleLimit]) + "..."
}
