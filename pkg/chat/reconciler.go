package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

// duplicateWindow is the timestamp tolerance when deciding that an incoming
// frame is a re-delivery of a message already in the list.
const duplicateWindow = time.Second

// Reconciler maintains one conversation's ordered message list and merges
// server frames into it without ever showing a duplicate or leaving a stale
// optimistic placeholder behind.
//
// The list order is insertion order by the time a message first appeared,
// pending or confirmed. Confirmation replaces an entry in place; nothing
// ever reorders.
type Reconciler struct {
	mu       sync.Mutex
	messages []model.Message
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// LoadHistory replaces the full list with the server-provided sequence,
// preserving its order. Called once after the history fetch resolves.
func (r *Reconciler) LoadHistory(messages []model.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append([]model.Message(nil), messages...)
}

// AppendOptimistic appends a pending message for the local user and returns
// its correlation id, which the caller includes in the outbound frame so the
// server's echo can be matched back to this entry.
func (r *Reconciler) AppendOptimistic(content string, sender model.User) string {
	correlationID := newCorrelationID()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, model.Message{
		CorrelationID: correlationID,
		Sender:        sender,
		Content:       content,
		Timestamp:     time.Now(),
	})
	return correlationID
}

// ApplyIncoming merges an inbound chat_message frame into the list.
//
// Match tiers, in order:
//  1. the frame's temp_id matches a pending entry: confirm it in place
//  2. a pending entry has the same content and sender: confirm that one
//     (older senders and message types without temp_id support)
//  3. a confirmed entry with the same content, sender and a timestamp within
//     one second already exists: discard the frame as a re-delivery
//  4. otherwise append as a new confirmed message
//
// The server is authoritative: confirmation takes every field from the
// frame, including content.
func (r *Reconciler) ApplyIncoming(event model.Event) {
	if event.User == nil {
		return
	}
	confirmed := model.Message{
		ID:        event.ID,
		Sender:    *event.User,
		Content:   event.Message,
		Timestamp: event.Timestamp,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if event.TempID != "" {
		for i := range r.messages {
			if r.messages[i].Pending() && r.messages[i].CorrelationID == event.TempID {
				r.messages[i] = confirmed
				return
			}
		}
	}

	for i := range r.messages {
		m := &r.messages[i]
		if m.Pending() && m.Content == confirmed.Content && m.Sender.ID == confirmed.Sender.ID {
			r.messages[i] = confirmed
			return
		}
	}

	for _, m := range r.messages {
		if m.ID != 0 && m.Content == confirmed.Content && m.Sender.ID == confirmed.Sender.ID &&
			absDuration(m.Timestamp.Sub(confirmed.Timestamp)) < duplicateWindow {
			return
		}
	}

	r.messages = append(r.messages, confirmed)
}

// DeleteConfirmed removes the message with the given server id. Callers only
// invoke this after the backend confirmed the delete; there is no optimistic
// delete.
func (r *Reconciler) DeleteConfirmed(messageID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == messageID {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return
		}
	}
}

// Messages returns a snapshot of the list in insertion order.
func (r *Reconciler) Messages() []model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Message(nil), r.messages...)
}

// newCorrelationID builds a timestamp+random composite unique within the
// lifetime of a channel.
func newCorrelationID() string {
	return fmt.Sprintf("temp-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
