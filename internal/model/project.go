package model

import (
	"encoding/json"
	"time"
)

const (
	VisibilityPrivate         = "private"
	VisibilityInvestorPreview = "investor_preview"
)

type Project struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"ownerId"`
	Title        string          `json:"title"`
	Summary      *string         `json:"summary"`
	Problem      *string         `json:"problem"`
	Solution     *string         `json:"solution"`
	TargetMarket *string         `json:"targetMarket"`
	Visibility   string          `json:"visibility"`
	SuccessScore *float64        `json:"successScore"`
	Plan         json.RawMessage `json:"aiPlanJson"`
	Budget       json.RawMessage `json:"aiBudgetJson"`
	Roadmap      json.RawMessage `json:"aiRoadmapJson"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProjectSummary is what discovery and admin listings expose.
type ProjectSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Summary      *string  `json:"summary,omitempty"`
	SuccessScore *float64 `json:"successScore"`
	Visibility   string   `json:"visibility"`
}

// Dealroom is the gated investor view of a project.
type Dealroom struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Summary      *string         `json:"summary"`
	SuccessScore *float64        `json:"successScore"`
	Plan         json.RawMessage `json:"plan"`
	Budget       json.RawMessage `json:"budget"`
	Roadmap      json.RawMessage `json:"roadmap"`
}

func (p *Project) ToSummary() ProjectSummary {
	return ProjectSummary{
		ID:           p.ID,
		Title:        p.Title,
		Summary:      p.Summary,
		SuccessScore: p.SuccessScore,
		Visibility:   p.Visibility,
	}
}

func (p *Project) ToDealroom() Dealroom {
	return Dealroom{
		ID:           p.ID,
		Title:        p.Title,
		Summary:      p.Summary,
		SuccessScore: p.SuccessScore,
		Plan:         nullJSON(p.Plan),
		Budget:       nullJSON(p.Budget),
		Roadmap:      nullJSON(p.Roadmap),
	}
}

func nullJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
