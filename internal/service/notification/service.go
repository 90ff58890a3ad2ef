// Package notification records in-app notifications derived from domain events.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "dealroom/contracts/mq"
	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
)

const (
	TypeAccessRequested     = "access_request.created"
	TypeAccessStatusChanged = "access_request.status_changed"
	TypeExpertInvited       = "shortlist.invited"

	defaultListLimit = 50
	maxListLimit     = 200
)

type Service struct {
	repo   repository.NotificationRepository
	logger *zap.Logger
}

func NewService(repo repository.NotificationRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return items, nil
}

// AccessStatusChanged tells the investor about an admin decision.
func (s *Service) AccessStatusChanged(ctx context.Context, p mqcontracts.AccessRequestStatusChangedPayload) error {
	title := p.ProjectTitle
	if title == "" {
		title = p.ProjectID
	}
	return s.record(ctx, &model.Notification{
		UserID:  p.InvestorID,
		Type:    TypeAccessStatusChanged,
		Content: fmt.Sprintf("Your access request for %q is now %s", title, p.Status),
		EventID: p.EventID,
	})
}

// AccessRequested tells the project owner an investor asked for access.
func (s *Service) AccessRequested(ctx context.Context, p mqcontracts.AccessRequestCreatedPayload) error {
	return s.record(ctx, &model.Notification{
		UserID:  p.OwnerID,
		Type:    TypeAccessRequested,
		Content: fmt.Sprintf("An investor requested access to project %s", p.ProjectID),
		EventID: p.EventID,
	})
}

// ExpertInvited tells an expert a founder shortlisted them.
func (s *Service) ExpertInvited(ctx context.Context, p mqcontracts.ShortlistInvitedPayload) error {
	title := p.ProjectTitle
	if title == "" {
		title = p.ProjectID
	}
	return s.record(ctx, &model.Notification{
		UserID:  p.ExpertUserID,
		Type:    TypeExpertInvited,
		Content: fmt.Sprintf("You were invited to join %q", title),
		EventID: p.EventID,
	})
}

func (s *Service) record(ctx context.Context, n *model.Notification) error {
	n.ID = uuid.NewString()
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("user_id", n.UserID),
		zap.String("type", n.Type),
		zap.String("event_id", n.EventID),
	)
	if !created {
		log.Info("Notification already recorded for event")
		return nil
	}
	log.Info("Notification created")
	return nil
}
