package repository

import (
	"context"
	"encoding/json"
	"time"

	"dealroom/internal/model"
)

// OutboxEvent is written in the same transaction as the row that caused it.
type OutboxEvent struct {
	AggregateType string
	AggregateID   string
	RoutingKey    string
	Payload       any
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateName(ctx context.Context, id, name string) error
}

type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, id string) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error)
	UpdateVisibility(ctx context.Context, id, visibility string) (*model.Project, error)
	UpdateAIOutput(ctx context.Context, id string, out AIOutput) (*model.Project, error)
	// ListOpenByDefault returns investor_preview projects and those scoring at or above threshold.
	ListOpenByDefault(ctx context.Context, threshold float64) ([]model.ProjectSummary, error)
}

// AIOutput is what a scoring run persists onto a project.
type AIOutput struct {
	Plan         json.RawMessage
	Budget       json.RawMessage
	Roadmap      json.RawMessage
	SuccessScore *float64
}

type AccessRequestRepository interface {
	Get(ctx context.Context, id string) (*model.AccessRequest, error)
	FindByPair(ctx context.Context, projectID, investorID string) (*model.AccessRequest, error)
	// CreateIfAbsent inserts req unless the pair already has a row; in that case the
	// existing row is loaded into req and created is false. evt is only written on insert.
	CreateIfAbsent(ctx context.Context, req *model.AccessRequest, evt *OutboxEvent) (created bool, err error)
	// UpdateStatus sets status and, when grantedAt is non-nil, granted_at.
	UpdateStatus(ctx context.Context, id, status string, grantedAt *time.Time, evt *OutboxEvent) (*model.AccessRequest, error)
	ListByInvestor(ctx context.Context, investorID string) ([]model.AccessRequest, error)
	// ListByStatus lists with project and investor summaries; empty status lists everything.
	ListByStatus(ctx context.Context, status string) ([]model.AccessRequest, error)
	HasApproved(ctx context.Context, projectID, investorID string) (bool, error)
}

type SettingsRepository interface {
	// GetNumber returns ok=false when the key has never been written.
	GetNumber(ctx context.Context, key string) (value float64, ok bool, err error)
	SetNumber(ctx context.Context, key string, value float64) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message, evt *OutboxEvent) error
	ListByProject(ctx context.Context, projectID string) ([]model.Message, error)
	Search(ctx context.Context, f model.MessageFilter) ([]model.Message, error)
}

type TaskRepository interface {
	Get(ctx context.Context, id string) (*model.Task, error)
	ListByAssignee(ctx context.Context, assigneeID string) ([]model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	IsAssigneeOnProject(ctx context.Context, projectID, userID string) (bool, error)
}

type MilestoneRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Milestone, error)
}

type NotificationRepository interface {
	// Create is a no-op when a notification with the same event id exists.
	Create(ctx context.Context, n *model.Notification) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
}

type SupplierRepository interface {
	Search(ctx context.Context, f model.SupplierFilter) ([]model.Supplier, error)
	Suggest(ctx context.Context, category string, limit int) ([]model.Supplier, error)
}

type QuoteRepository interface {
	CreateBatch(ctx context.Context, quotes []*model.Quote) error
	Get(ctx context.Context, id string) (*model.Quote, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Quote, error)
	Submit(ctx context.Context, id string, offer json.RawMessage) (*model.Quote, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Quote, error)
}

type ExpertRepository interface {
	Get(ctx context.Context, id string) (*model.Expert, error)
	FindByUserID(ctx context.Context, userID string) (*model.Expert, error)
	Upsert(ctx context.Context, e *model.Expert) (*model.Expert, error)
}

type InvestorProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.InvestorProfile, error)
	Upsert(ctx context.Context, p *model.InvestorProfile) (*model.InvestorProfile, error)
}

type ShortlistRepository interface {
	Create(ctx context.Context, s *model.Shortlist, evt *OutboxEvent) error
	Get(ctx context.Context, id string) (*model.Shortlist, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Shortlist, error)
	ListByExpert(ctx context.Context, expertID string) ([]model.Shortlist, error)
}

var (
	_ UserRepository            = (*PgUserRepository)(nil)
	_ ProjectRepository         = (*PgProjectRepository)(nil)
	_ AccessRequestRepository   = (*PgAccessRequestRepository)(nil)
	_ SettingsRepository        = (*PgSettingsRepository)(nil)
	_ MessageRepository         = (*PgMessageRepository)(nil)
	_ TaskRepository            = (*PgTaskRepository)(nil)
	_ MilestoneRepository       = (*PgMilestoneRepository)(nil)
	_ NotificationRepository    = (*PgNotificationRepository)(nil)
	_ SupplierRepository        = (*PgSupplierRepository)(nil)
	_ QuoteRepository           = (*PgQuoteRepository)(nil)
	_ ExpertRepository          = (*PgExpertRepository)(nil)
	_ InvestorProfileRepository = (*PgInvestorProfileRepository)(nil)
	_ ShortlistRepository       = (*PgShortlistRepository)(nil)
)
