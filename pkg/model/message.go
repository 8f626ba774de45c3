package model

import "time"

// Message is one entry in a conversation's ordered message list.
//
// A locally-originated message starts out pending: no server ID, a
// client-generated CorrelationID. When the server's echo arrives the entry is
// confirmed in place: ID becomes authoritative and CorrelationID is cleared.
// At most one entry carries a given CorrelationID at any time.
type Message struct {
	ID             int64 `json:"id,omitempty"`
	ConversationID int64 `json:"conversation,omitempty"`

	// CorrelationID is client-side only; it never goes over the REST wire.
	CorrelationID string `json:"-"`

	Sender    User      `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Participants is embedded by the history endpoint on each message.
	Participants []User `json:"participants,omitempty"`
}

// Pending reports whether the message is still awaiting server confirmation.
func (m Message) Pending() bool {
	return m.ID == 0 && m.CorrelationID != ""
}

// Conversation mirrors the backend's conversation serializer.
type Conversation struct {
	ID           int64     `json:"id"`
	Participants []User    `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}
