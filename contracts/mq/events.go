// Package mq holds the payloads exchanged over RabbitMQ between the API and the worker.
package mq

import "time"

const (
	RoutingKeyAccessRequestCreated       = "access_request.created"
	RoutingKeyAccessRequestStatusChanged = "access_request.status_changed"
	RoutingKeyMessageCreated             = "message.created"
	RoutingKeyShortlistInvited           = "shortlist.invited"
)

// AccessRequestCreatedPayload is emitted when an investor asks to view a project.
type AccessRequestCreatedPayload struct {
	EventID    string    `json:"event_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	RequestID  string    `json:"request_id"`
	ProjectID  string    `json:"project_id"`
	InvestorID string    `json:"investor_id"`
	OwnerID    string    `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AccessRequestStatusChangedPayload is emitted after an admin review.
type AccessRequestStatusChangedPayload struct {
	EventID      string     `json:"event_id"`
	TraceID      string     `json:"trace_id,omitempty"`
	RequestID    string     `json:"request_id"`
	ProjectID    string     `json:"project_id"`
	ProjectTitle string     `json:"project_title"`
	InvestorID   string     `json:"investor_id"`
	Status       string     `json:"status"`
	GrantedAt    *time.Time `json:"granted_at,omitempty"`
	ChangedAt    time.Time  `json:"changed_at"`
}

// MessageCreatedPayload mirrors a persisted project message.
type MessageCreatedPayload struct {
	EventID        string    `json:"event_id"`
	TraceID        string    `json:"trace_id,omitempty"`
	MessageID      string    `json:"message_id"`
	ProjectID      string    `json:"project_id"`
	SenderID       string    `json:"sender_id"`
	HasAttachments bool      `json:"has_attachments"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShortlistInvitedPayload is emitted when a founder invites an expert onto a project.
type ShortlistInvitedPayload struct {
	EventID      string    `json:"event_id"`
	TraceID      string    `json:"trace_id,omitempty"`
	ShortlistID  string    `json:"shortlist_id"`
	ProjectID    string    `json:"project_id"`
	ProjectTitle string    `json:"project_title"`
	ExpertID     string    `json:"expert_id"`
	ExpertUserID string    `json:"expert_user_id"`
	CreatedAt    time.Time `json:"created_at"`
}
