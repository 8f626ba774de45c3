package chat

import (
	"sync"

	"github.com/abdulazizbumar270-eng/feedback/pkg/model"
)

// PresenceSet tracks the participants currently connected to a channel, fed
// by online_status frames. Membership updates are idempotent both ways:
// adding a user already present and removing one already absent are no-ops.
type PresenceSet struct {
	mu    sync.Mutex
	users map[int]model.User
}

func NewPresenceSet() *PresenceSet {
	return &PresenceSet{users: make(map[int]model.User)}
}

// ApplyOnline unions the records into the set.
func (p *PresenceSet) ApplyOnline(users []model.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range users {
		if _, ok := p.users[u.ID]; !ok {
			p.users[u.ID] = u
		}
	}
}

// ApplyOffline removes matching ids from the set.
func (p *PresenceSet) ApplyOffline(users []model.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range users {
		delete(p.users, u.ID)
	}
}

// Online reports whether the user is in the set.
func (p *PresenceSet) Online(userID int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[userID]
	return ok
}

// Users returns the current members. Enumeration order is unspecified; the
// set is display-only.
func (p *PresenceSet) Users() []model.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.User, 0, len(p.users))
	for _, u := range p.users {
		out = append(out, u)
	}
	return out
}

// Len returns the number of members.
func (p *PresenceSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}
