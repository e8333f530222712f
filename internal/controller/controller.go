package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"citizen-impact/client/internal/interfaces"
	"citizen-impact/client/internal/model"
	"citizen-impact/client/internal/session"
	"citizen-impact/client/internal/timeline"
)

// anonymousSession is the fallback session id used when the user is not
// signed in and no persisted session can exist.
const anonymousSession = "anonymous_session"

// Params bundles the controller's constructor-injected collaborators. Now
// and NewID default to the wall clock and random UUIDs; tests override them.
type Params struct {
	Backend   interfaces.Backend
	Registry  *session.Registry
	Timeline  *timeline.Timeline
	Identity  func() model.Identity
	ErrorText string
	Now       func() time.Time
	NewID     func() string
}

// Controller orchestrates the active conversation: it owns the timeline,
// drives the session lifecycle, and runs the send/receive protocol with
// optimistic updates. It is a two-state machine, Idle and Sending; sends
// are serialized, so at most one round-trip is outstanding at any time.
type Controller struct {
	backend  interfaces.Backend
	registry *session.Registry
	timeline *timeline.Timeline
	identity func() model.Identity
	errText  string
	now      func() time.Time
	newID    func() string

	mu      sync.Mutex
	pending bool
	// view generation, bumped whenever the user navigates to a different
	// conversation. Responses issued under an older generation are dropped
	// so a slow reply can never land in the wrong timeline.
	gen uint64
}

func New(p Params) *Controller {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.NewID == nil {
		p.NewID = uuid.NewString
	}
	if p.Identity == nil {
		p.Identity = func() model.Identity { return model.Identity{} }
	}
	return &Controller{
		backend:  p.Backend,
		registry: p.Registry,
		timeline: p.Timeline,
		identity: p.Identity,
		errText:  p.ErrorText,
		now:      p.Now,
		newID:    p.NewID,
	}
}

// Pending reports whether a send round-trip is outstanding.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Send runs one full send cycle: optimistic user append, session
// resolution, the /chat round trip, and the assistant (or synthetic error)
// append. It blocks until the cycle completes and returns the appended
// assistant message. The return is nil when the send was a no-op (blank
// input, another send in flight) or when the reply arrived after the user
// had already navigated to a different conversation.
func (c *Controller) Send(ctx context.Context, rawText string) *model.Message {
	if strings.TrimSpace(rawText) == "" {
		return nil
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return nil
	}
	c.pending = true
	gen := c.gen
	c.mu.Unlock()

	// The pending flag must clear even if an append below panics.
	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	identity := c.identity()

	// Optimistic update: the user's message is visible before any network
	// round-trip is issued.
	c.timeline.Append(model.Message{
		ID:        c.newID(),
		Text:      rawText,
		Author:    model.AuthorUser,
		CreatedAt: c.now(),
	})

	sessionID := c.resolveSession(ctx, identity, rawText)

	answer, err := c.backend.Chat(ctx, rawText, sessionID)

	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if stale {
		slog.Debug("Dropping chat reply for a conversation the user left", "session_id", sessionID)
		return nil
	}

	reply := model.Message{
		ID:        c.newID(),
		Author:    model.AuthorAssistant,
		CreatedAt: c.now(),
	}
	if err != nil {
		slog.Warn("Chat request failed, appending synthetic error message", "session_id", sessionID, "error", err)
		reply.Text = c.errText
	} else {
		reply.Text = answer
	}
	c.timeline.Append(reply)
	return &reply
}

// resolveSession picks the session id for this send: the active session
// when one is selected, a freshly created one when the user is signed in,
// and a derived fallback otherwise. Creation failure never aborts the send;
// the message still reaches the answering service under the fallback id.
func (c *Controller) resolveSession(ctx context.Context, identity model.Identity, seed string) string {
	if active := c.registry.ActiveID(); active != "" {
		return active
	}

	if identity.Known() {
		created, err := c.registry.Ensure(ctx, identity, seed)
		if err == nil {
			return created.ID
		}
		slog.Warn("Could not create session, using fallback id", "error", err)
		return identity.Email
	}

	return anonymousSession
}

// SelectSession makes id the active conversation and loads its history.
// The timeline is cleared first, so messages from the previously active
// session are never visible even if the history fetch fails.
func (c *Controller) SelectSession(ctx context.Context, id string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.registry.Select(id)
	c.timeline.Clear()

	history, err := c.backend.History(ctx, id)
	if err != nil {
		slog.Warn("Could not load history, leaving the timeline empty", "session_id", id, "error", err)
		return err
	}

	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if stale {
		return nil
	}

	c.timeline.ReplaceAll(history)
	return nil
}

// NewConversation clears the active session id and the timeline without
// contacting the backend. The persisted session is created lazily on the
// next successful send.
func (c *Controller) NewConversation() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()

	c.registry.Select("")
	c.timeline.Clear()
}
