package model

import "time"

const (
	AccessRequested = "requested"
	AccessApproved  = "approved"
	AccessRejected  = "rejected"
	AccessRevoked   = "revoked"
)

type AccessRequest struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	InvestorID string     `json:"investorId"`
	Status     string     `json:"status"`
	GrantedAt  *time.Time `json:"grantedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Project  *ProjectSummary `json:"project,omitempty"`
	Investor *UserSummary    `json:"investor,omitempty"`
}
