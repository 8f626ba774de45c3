// Package inbox keeps a user's cached feedback list in sync with live
// admin-side changes. It is the simple sibling of the chat reconciler: these
// updates are never locally originated (the client is a pure observer of
// state another actor changed), so there is no correlation machinery, just
// patch-by-id or prepend.
package inbox

import (
	"sync"

	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

// Relay applies feedback_update frames into the cached inbox list.
type Relay struct {
	mu        sync.Mutex
	feedbacks []model.Feedback
}

func NewRelay() *Relay {
	return &Relay{}
}

// Load replaces the cached list, preserving server order. Called once after
// the REST list resolves.
func (r *Relay) Load(feedbacks []model.Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedbacks = append([]model.Feedback(nil), feedbacks...)
}

// ApplyUpdate merges the patch into the entry with the same id, overwriting
// the fields the patch carries and leaving the rest alone. An unknown id is
// prepended as a new entry: an update for a feedback the client has not
// listed yet. Existing entries never move.
func (r *Relay) ApplyUpdate(patch model.Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.feedbacks {
		if r.feedbacks[i].ID == patch.ID {
			merge(&r.feedbacks[i], patch)
			return
		}
	}
	r.feedbacks = append([]model.Feedback{patch}, r.feedbacks...)
}

// Feedbacks returns a snapshot of the cached list.
func (r *Relay) Feedbacks() []model.Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Feedback(nil), r.feedbacks...)
}

// merge overwrites dst fields with the ones the patch actually carries.
func merge(dst *model.Feedback, patch model.Feedback) {
	if patch.User != nil {
		dst.User = patch.User
	}
	if patch.Name != "" {
		dst.Name = patch.Name
	}
	if patch.Email != "" {
		dst.Email = patch.Email
	}
	if patch.Subject != "" {
		dst.Subject = patch.Subject
	}
	if patch.Message != "" {
		dst.Message = patch.Message
	}
	if patch.Type != "" {
		dst.Type = patch.Type
	}
	if patch.Status != "" {
		dst.Status = patch.Status
	}
	if patch.AdminResponse != "" {
		dst.AdminResponse = patch.AdminResponse
	}
	if !patch.CreatedAt.IsZero() {
		dst.CreatedAt = patch.CreatedAt
	}
	if !patch.UpdatedAt.IsZero() {
		dst.UpdatedAt = patch.UpdatedAt
	}
}
