package model

import "time"

// Frame types carried over the live channel.
const (
	EventChatMessage    = "chat_message"
	EventTyping         = "typing"
	EventOnlineStatus   = "online_status"
	EventFeedbackUpdate = "feedback_update"
)

// Online status values inside an online_status frame.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Event is the inbound frame envelope. The server multiplexes every frame
// type over one socket, so this is the union of all inbound payloads; Type
// says which fields are meaningful.
type Event struct {
	Type string `json:"type"`

	// chat_message
	ID        int64     `json:"id,omitempty"`
	Message   string    `json:"message,omitempty"`
	User      *User     `json:"user,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	TempID    string    `json:"temp_id,omitempty"`

	// typing (User doubles as the typist)
	Receiver int `json:"receiver,omitempty"`

	// online_status
	Status      string `json:"status,omitempty"`
	OnlineUsers []User `json:"online_users,omitempty"`

	// feedback_update
	Feedback *Feedback `json:"feedback,omitempty"`
}

// ChatMessageSend is the outbound frame for sending a message. TempID is the
// correlation id the server echoes back so the optimistic entry can be
// confirmed in place.
type ChatMessageSend struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	TempID         string `json:"temp_id"`
	ConversationID string `json:"conversation"`
}

// TypingSend is the outbound typing notification.
type TypingSend struct {
	Type     string `json:"type"`
	User     int    `json:"user"`
	Receiver int    `json:"receiver"`
}
