package model

import "time"

type FeedbackType string

const (
	TypeFeedback  FeedbackType = "feedback"
	TypeComplaint FeedbackType = "complaint"
	TypeQuestion  FeedbackType = "question"
)

type FeedbackStatus string

const (
	StatusOpen       FeedbackStatus = "open"
	StatusInProgress FeedbackStatus = "in_progress"
	StatusResolved   FeedbackStatus = "resolved"
)

// Feedback is a submitted feedback entry as the backend serializes it.
// The notification feed pushes partial updates of this shape when an admin
// responds or changes the status.
type Feedback struct {
	ID            int64          `json:"id"`
	User          *User          `json:"user,omitempty"`
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email,omitempty"`
	Subject       string         `json:"subject,omitempty"`
	Message       string         `json:"message,omitempty"`
	Type          FeedbackType   `json:"type,omitempty"`
	Status        FeedbackStatus `json:"status,omitempty"`
	AdminResponse string         `json:"admin_response,omitempty"`
	CreatedAt     time.Time      `json:"created_at,omitzero"`
	UpdatedAt     time.Time      `json:"updated_at,omitzero"`
}
