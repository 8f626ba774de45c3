package model

// User mirrors the backend's user serializer. Participants, senders and
// presence records all use this shape.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}
