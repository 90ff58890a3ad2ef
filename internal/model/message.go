package model

import "time"

type Message struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	SenderID    string       `json:"senderId"`
	Body        string       `json:"body"`
	Attachments []string     `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	Sender      *UserSummary `json:"sender,omitempty"`
}

// MessageFilter narrows a message search. Zero values mean "no constraint".
type MessageFilter struct {
	ProjectID      string
	Query          string
	HasAttachments bool
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}
