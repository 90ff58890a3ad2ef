package model

import "time"

const (
	TaskTodo    = "todo"
	TaskDoing   = "doing"
	TaskDone    = "done"
	TaskBlocked = "blocked"
)

type Task struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	MilestoneID    *string   `json:"milestoneId"`
	AssigneeID     *string   `json:"assigneeId"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	EstimatedHours *float64  `json:"estimatedHours"`
	ActualHours    *float64  `json:"actualHours"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TaskPatch carries the optional fields an assignee may change.
type TaskPatch struct {
	Status      *string
	ActualHours *float64
}

type Milestone struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Title     string     `json:"title"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Tasks     []Task     `json:"tasks"`
}
