package timeline

import (
	"sync"

	"citizen-impact/client/internal/model"
)

// Timeline is the ordered in-memory sequence of messages for the
// conversation currently on screen. The controller is the only writer; the
// view layer reads snapshots. No message is ever removed individually; the
// only deletions are whole-timeline resets via Clear or ReplaceAll.
type Timeline struct {
	mu       sync.RWMutex
	messages []model.Message
}

func New() *Timeline {
	return &Timeline{}
}

// Append adds a message to the end of the timeline, preserving insertion
// order.
func (t *Timeline) Append(msg model.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Clear resets the timeline to empty.
func (t *Timeline) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}

// ReplaceAll atomically swaps the full ordered sequence. Used when loading
// the history of a selected session.
func (t *Timeline) ReplaceAll(messages []model.Message) {
	copied := make([]model.Message, len(messages))
	copy(copied, messages)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = copied
}

// Messages returns a snapshot of the current sequence. Callers own the
// returned slice; mutating it does not affect the timeline.
func (t *Timeline) Messages() []model.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snapshot := make([]model.Message, len(t.messages))
	copy(snapshot, t.messages)
	return snapshot
}

// Len returns the number of messages currently in the timeline.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
