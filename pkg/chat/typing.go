package chat

import (
	"sync"
	"time"

	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

// typingExpiry is how long a remote typing indicator stays up without being
// refreshed.
const typingExpiry = 2 * time.Second

// TypingSignal tracks at most one remote participant currently typing. A new
// typing frame from the same or a different participant replaces the entry
// and restarts the timer (debounced, never stacked). The entry clears on
// timer expiry or when a confirmed message from that participant arrives,
// whichever comes first.
type TypingSignal struct {
	localUserID int
	expiry      time.Duration

	mu    sync.Mutex
	who   *model.User
	timer *time.Timer
	gen   uint64 // bumped on every set/clear so a stale timer cannot clear a refreshed entry
}

func NewTypingSignal(localUserID int) *TypingSignal {
	return &TypingSignal{localUserID: localUserID, expiry: typingExpiry}
}

// OnRemoteTyping records a typing frame. Frames not addressed to the local
// user, and the local user's own typing, are ignored: you never see your
// own indicator.
func (t *TypingSignal) OnRemoteTyping(who model.User, receiverID int) {
	if receiverID != t.localUserID || who.ID == t.localUserID {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	u := who
	t.who = &u
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.expiry, func() { t.expire(gen) })
}

// ClearFor drops the indicator if senderID is the participant it belongs to.
// Called when a confirmed message arrives: the typist evidently finished.
func (t *TypingSignal) ClearFor(senderID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.who == nil || t.who.ID != senderID {
		return
	}
	t.clearLocked()
}

// Typist returns who is currently typing, or nil.
func (t *TypingSignal) Typist() *model.User {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.who == nil {
		return nil
	}
	u := *t.who
	return &u
}

// Stop cancels the pending expiry timer. Must be called on teardown so a
// stray callback cannot fire after the owning view is gone.
func (t *TypingSignal) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

// expire is only ever invoked by the timer. A timer that lost the race with
// a refresh sees a newer generation and leaves the entry alone.
func (t *TypingSignal) expire(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	t.who = nil
	t.timer = nil
}

func (t *TypingSignal) clearLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.who = nil
	t.gen++
}
