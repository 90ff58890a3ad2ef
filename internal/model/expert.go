package model

import "time"

const (
	InviteInvited  = "invited"
	InviteAccepted = "accepted"
	InviteDeclined = "declined"
	InviteHired    = "hired"
)

type Expert struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Categories       []string  `json:"categories"`
	Skills           []string  `json:"skills"`
	Location         *string   `json:"location"`
	PortfolioLinks   []string  `json:"portfolioLinks"`
	Availability     string    `json:"availability"`
	PerformanceScore float64   `json:"performanceScore"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Shortlist is a founder's invitation of an expert onto a project.
type Shortlist struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	ExpertID  string          `json:"expertId"`
	Reason    *string         `json:"reason"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Project   *ProjectSummary `json:"project,omitempty"`
}

type InvestorProfile struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	FocusAreas      []string  `json:"focusAreas"`
	StageFocus      []string  `json:"stageFocus"`
	GeographicFocus []string  `json:"geographicFocus"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OnboardingState is derived from the profile rows; nothing stores it directly.
type OnboardingState struct {
	Role     string            `json:"role"`
	User     OnboardingUser    `json:"user"`
	Complete bool              `json:"complete"`
	Details  OnboardingDetails `json:"details"`
}

type OnboardingUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OnboardingDetails carries the section that belongs to the caller's role.
type OnboardingDetails struct {
	Founder  *FounderDetails  `json:"founder,omitempty"`
	Expert   *Expert          `json:"expert,omitempty"`
	Investor *InvestorProfile `json:"investor,omitempty"`
}

type FounderDetails struct {
	Name string `json:"name"`
}
