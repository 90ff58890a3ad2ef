// Package shortlist lets founders invite experts onto a project and experts answer.
package shortlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "dealroom/contracts/mq"
	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
	"dealroom/pkg/trace"
)

var (
	ErrProjectNotOwned   = errors.New("Project not found or not owned by you")
	ErrExpertNotFound    = errors.New("expert not found")
	ErrShortlistNotFound = errors.New("shortlist not found")
	ErrNotYourInvite     = errors.New("Not your invite")
	ErrInvalidStatus     = errors.New("status must be accepted|declined|hired")
)

type Service struct {
	projects   repository.ProjectRepository
	experts    repository.ExpertRepository
	shortlists repository.ShortlistRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(projects repository.ProjectRepository, experts repository.ExpertRepository, shortlists repository.ShortlistRepository, logger *zap.Logger) *Service {
	return &Service{projects: projects, experts: experts, shortlists: shortlists, logger: logger, now: time.Now}
}

// Invite shortlists an expert on the founder's own project and queues a notification for the expert.
func (s *Service) Invite(ctx context.Context, ownerID, projectID, expertID string, reason *string) (*model.Shortlist, error) {
	if uuid.Validate(projectID) != nil {
		return nil, ErrProjectNotOwned
	}
	p, err := s.projects.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if p.OwnerID != ownerID {
		return nil, ErrProjectNotOwned
	}

	if uuid.Validate(expertID) != nil {
		return nil, ErrExpertNotFound
	}
	expert, err := s.experts.Get(ctx, expertID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExpertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading expert: %w", err)
	}

	sl := &model.Shortlist{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		ExpertID:  expertID,
		Reason:    reason,
		Status:    model.InviteInvited,
	}
	evt := &repository.OutboxEvent{
		AggregateType: "shortlist",
		AggregateID:   sl.ID,
		RoutingKey:    mqcontracts.RoutingKeyShortlistInvited,
		Payload: mqcontracts.ShortlistInvitedPayload{
			EventID:      uuid.NewString(),
			TraceID:      trace.FromContext(ctx),
			ShortlistID:  sl.ID,
			ProjectID:    projectID,
			ProjectTitle: p.Title,
			ExpertID:     expertID,
			ExpertUserID: expert.UserID,
			CreatedAt:    s.now().UTC(),
		},
	}
	if err := s.shortlists.Create(ctx, sl, evt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExpertNotFound
		}
		return nil, fmt.Errorf("creating shortlist: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("Expert invited",
		zap.String("shortlist_id", sl.ID),
		zap.String("project_id", projectID),
		zap.String("expert_id", expertID),
	)
	return sl, nil
}

// Respond lets the invited expert accept, decline or mark the invite hired.
func (s *Service) Respond(ctx context.Context, userID, shortlistID, status string) (*model.Shortlist, error) {
	switch status {
	case model.InviteAccepted, model.InviteDeclined, model.InviteHired:
	default:
		return nil, ErrInvalidStatus
	}
	if uuid.Validate(shortlistID) != nil {
		return nil, ErrShortlistNotFound
	}

	sl, err := s.shortlists.Get(ctx, shortlistID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrShortlistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading shortlist: %w", err)
	}

	expert, err := s.experts.Get(ctx, sl.ExpertID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotYourInvite
	}
	if err != nil {
		return nil, fmt.Errorf("loading expert: %w", err)
	}
	if expert.UserID != userID {
		return nil, ErrNotYourInvite
	}

	updated, err := s.shortlists.UpdateStatus(ctx, shortlistID, status)
	if err != nil {
		return nil, fmt.Errorf("updating shortlist: %w", err)
	}
	logger.WithTrace(ctx, s.logger).Info("Invite answered", zap.String("shortlist_id", shortlistID), zap.String("status", status))
	return updated, nil
}

// Mine lists the invites addressed to the caller's expert profile. No profile means no invites.
func (s *Service) Mine(ctx context.Context, userID string) ([]model.Shortlist, error) {
	expert, err := s.experts.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.Shortlist{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading expert: %w", err)
	}
	out, err := s.shortlists.ListByExpert(ctx, expert.ID)
	if err != nil {
		return nil, fmt.Errorf("listing shortlists: %w", err)
	}
	return out, nil
}
