package reveal

import (
	"sync"
	"time"
)

// DefaultDelay is the pacing used by the web client: one character every
// 20ms.
const DefaultDelay = 20 * time.Millisecond

// Revealer paces the display of an already-complete assistant reply, one
// rune at a time. It applies only to assistant messages; user input renders
// in full immediately and never goes through here. Starting a new reveal
// cancels the previous one, so at most one animation is in flight.
type Revealer struct {
	delay time.Duration

	mu     sync.Mutex
	active *Reveal
}

func NewRevealer(delay time.Duration) *Revealer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Revealer{delay: delay}
}

// Start begins revealing text and returns the handle for the new animation.
// Any previous animation is stopped first; reveals are never queued.
func (r *Revealer) Start(text string) *Reveal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Stop()
	}
	r.active = newReveal(text, r.delay)
	return r.active
}

// StopActive cancels the in-flight animation, if any. Called on teardown
// and on navigation so nothing keeps writing into a discarded view.
func (r *Revealer) StopActive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Stop()
		r.active = nil
	}
}

// Reveal is a single in-flight typewriter animation. Frames yields
// strictly increasing prefixes of the target text and is closed once the
// full text has been revealed or Stop is called; the sequence is bounded by
// the text length. Stop is idempotent and safe to call from any goroutine.
type Reveal struct {
	frames chan string
	done   chan struct{}
	stop   sync.Once
}

func newReveal(text string, delay time.Duration) *Reveal {
	rv := &Reveal{
		frames: make(chan string),
		done:   make(chan struct{}),
	}
	go rv.run([]rune(text), delay)
	return rv
}

func (rv *Reveal) run(runes []rune, delay time.Duration) {
	defer close(rv.frames)
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-rv.done:
			return
		case <-ticker.C:
		}
		select {
		case rv.frames <- string(runes[:i]):
		case <-rv.done:
			return
		}
	}
}

// Frames is the lazy sequence of prefixes. The channel is closed when the
// reveal finishes or is stopped.
func (rv *Reveal) Frames() <-chan string {
	return rv.frames
}

// Stop cancels the animation. No further frames are produced after Stop
// returns; calling it more than once is a no-op.
func (rv *Reveal) Stop() {
	rv.stop.Do(func() {
		close(rv.done)
	})
}
