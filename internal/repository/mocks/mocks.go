package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"dealroom/internal/model"
	"dealroom/internal/repository"
)

// UserRepository is a mock for repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *UserRepository) UpdateName(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

// ProjectRepository is a mock for repository.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*model.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	args := m.Called(ctx, ownerID)
	if list, ok := args.Get(0).([]model.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) UpdateVisibility(ctx context.Context, id, visibility string) (*model.Project, error) {
	args := m.Called(ctx, id, visibility)
	if p, ok := args.Get(0).(*model.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) UpdateAIOutput(ctx context.Context, id string, out repository.AIOutput) (*model.Project, error) {
	args := m.Called(ctx, id, out)
	if p, ok := args.Get(0).(*model.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListOpenByDefault(ctx context.Context, threshold float64) ([]model.ProjectSummary, error) {
	args := m.Called(ctx, threshold)
	if list, ok := args.Get(0).([]model.ProjectSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AccessRequestRepository is a mock for repository.AccessRequestRepository.
type AccessRequestRepository struct {
	mock.Mock
}

func (m *AccessRequestRepository) Get(ctx context.Context, id string) (*model.AccessRequest, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*model.AccessRequest); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccessRequestRepository) FindByPair(ctx context.Context, projectID, investorID string) (*model.AccessRequest, error) {
	args := m.Called(ctx, projectID, investorID)
	if r, ok := args.Get(0).(*model.AccessRequest); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccessRequestRepository) CreateIfAbsent(ctx context.Context, req *model.AccessRequest, evt *repository.OutboxEvent) (bool, error) {
	args := m.Called(ctx, req, evt)
	return args.Bool(0), args.Error(1)
}

func (m *AccessRequestRepository) UpdateStatus(ctx context.Context, id, status string, grantedAt *time.Time, evt *repository.OutboxEvent) (*model.AccessRequest, error) {
	args := m.Called(ctx, id, status, grantedAt, evt)
	if r, ok := args.Get(0).(*model.AccessRequest); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccessRequestRepository) ListByInvestor(ctx context.Context, investorID string) ([]model.AccessRequest, error) {
	args := m.Called(ctx, investorID)
	if list, ok := args.Get(0).([]model.AccessRequest); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccessRequestRepository) ListByStatus(ctx context.Context, status string) ([]model.AccessRequest, error) {
	args := m.Called(ctx, status)
	if list, ok := args.Get(0).([]model.AccessRequest); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccessRequestRepository) HasApproved(ctx context.Context, projectID, investorID string) (bool, error) {
	args := m.Called(ctx, projectID, investorID)
	return args.Bool(0), args.Error(1)
}

// SettingsRepository is a mock for repository.SettingsRepository.
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) GetNumber(ctx context.Context, key string) (float64, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *SettingsRepository) SetNumber(ctx context.Context, key string, value float64) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MessageRepository is a mock for repository.MessageRepository.
type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Create(ctx context.Context, msg *model.Message, evt *repository.OutboxEvent) error {
	args := m.Called(ctx, msg, evt)
	return args.Error(0)
}

func (m *MessageRepository) ListByProject(ctx context.Context, projectID string) ([]model.Message, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]model.Message); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MessageRepository) Search(ctx context.Context, f model.MessageFilter) ([]model.Message, error) {
	args := m.Called(ctx, f)
	if list, ok := args.Get(0).([]model.Message); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TaskRepository is a mock for repository.TaskRepository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*model.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) ListByAssignee(ctx context.Context, assigneeID string) ([]model.Task, error) {
	args := m.Called(ctx, assigneeID)
	if list, ok := args.Get(0).([]model.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	args := m.Called(ctx, id, patch)
	if t, ok := args.Get(0).(*model.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) IsAssigneeOnProject(ctx context.Context, projectID, userID string) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

// MilestoneRepository is a mock for repository.MilestoneRepository.
type MilestoneRepository struct {
	mock.Mock
}

func (m *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]model.Milestone, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]model.Milestone); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// NotificationRepository is a mock for repository.NotificationRepository.
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, n *model.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

func (m *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if list, ok := args.Get(0).([]model.Notification); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SupplierRepository is a mock for repository.SupplierRepository.
type SupplierRepository struct {
	mock.Mock
}

func (m *SupplierRepository) Search(ctx context.Context, f model.SupplierFilter) ([]model.Supplier, error) {
	args := m.Called(ctx, f)
	if list, ok := args.Get(0).([]model.Supplier); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SupplierRepository) Suggest(ctx context.Context, category string, limit int) ([]model.Supplier, error) {
	args := m.Called(ctx, category, limit)
	if list, ok := args.Get(0).([]model.Supplier); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// QuoteRepository is a mock for repository.QuoteRepository.
type QuoteRepository struct {
	mock.Mock
}

func (m *QuoteRepository) CreateBatch(ctx context.Context, quotes []*model.Quote) error {
	args := m.Called(ctx, quotes)
	return args.Error(0)
}

func (m *QuoteRepository) Get(ctx context.Context, id string) (*model.Quote, error) {
	args := m.Called(ctx, id)
	if q, ok := args.Get(0).(*model.Quote); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuoteRepository) ListByProject(ctx context.Context, projectID string) ([]model.Quote, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]model.Quote); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuoteRepository) Submit(ctx context.Context, id string, offer json.RawMessage) (*model.Quote, error) {
	args := m.Called(ctx, id, offer)
	if q, ok := args.Get(0).(*model.Quote); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuoteRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Quote, error) {
	args := m.Called(ctx, id, status)
	if q, ok := args.Get(0).(*model.Quote); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

// ExpertRepository is a mock for repository.ExpertRepository.
type ExpertRepository struct {
	mock.Mock
}

func (m *ExpertRepository) Get(ctx context.Context, id string) (*model.Expert, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*model.Expert); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ExpertRepository) FindByUserID(ctx context.Context, userID string) (*model.Expert, error) {
	args := m.Called(ctx, userID)
	if e, ok := args.Get(0).(*model.Expert); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ExpertRepository) Upsert(ctx context.Context, e *model.Expert) (*model.Expert, error) {
	args := m.Called(ctx, e)
	if out, ok := args.Get(0).(*model.Expert); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// InvestorProfileRepository is a mock for repository.InvestorProfileRepository.
type InvestorProfileRepository struct {
	mock.Mock
}

func (m *InvestorProfileRepository) FindByUserID(ctx context.Context, userID string) (*model.InvestorProfile, error) {
	args := m.Called(ctx, userID)
	if p, ok := args.Get(0).(*model.InvestorProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvestorProfileRepository) Upsert(ctx context.Context, p *model.InvestorProfile) (*model.InvestorProfile, error) {
	args := m.Called(ctx, p)
	if out, ok := args.Get(0).(*model.InvestorProfile); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// ShortlistRepository is a mock for repository.ShortlistRepository.
type ShortlistRepository struct {
	mock.Mock
}

func (m *ShortlistRepository) Create(ctx context.Context, s *model.Shortlist, evt *repository.OutboxEvent) error {
	args := m.Called(ctx, s, evt)
	return args.Error(0)
}

func (m *ShortlistRepository) Get(ctx context.Context, id string) (*model.Shortlist, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*model.Shortlist); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ShortlistRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Shortlist, error) {
	args := m.Called(ctx, id, status)
	if s, ok := args.Get(0).(*model.Shortlist); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ShortlistRepository) ListByExpert(ctx context.Context, expertID string) ([]model.Shortlist, error) {
	args := m.Called(ctx, expertID)
	if list, ok := args.Get(0).([]model.Shortlist); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
