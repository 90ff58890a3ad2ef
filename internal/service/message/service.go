// Package message persists project messages and hands them to the realtime fanout.
package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "dealroom/contracts/mq"
	"dealroom/internal/model"
	"dealroom/internal/realtime"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
	"dealroom/pkg/trace"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200
)

var (
	ErrInvalidInput    = errors.New("body or attachments required")
	ErrProjectRequired = errors.New("projectId required")
	ErrProjectNotFound = errors.New("project not found")
)

type CreateInput struct {
	ProjectID   string
	Body        string
	Attachments []string
}

// SearchInput carries raw query values; a nil Limit means the caller gave none.
type SearchInput struct {
	ProjectID      string
	Query          string
	HasAttachments bool
	From           *time.Time
	To             *time.Time
	Limit          *int
	Offset         int
}

// Caller identifies who is reading or posting.
type Caller struct {
	UserID string
	Role   string
}

// Service reads and writes a project's thread. Every operation is authorized like a room join.
type Service struct {
	messages    repository.MessageRepository
	authz       realtime.Authorizer
	broadcaster realtime.Broadcaster
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(messages repository.MessageRepository, authz realtime.Authorizer, broadcaster realtime.Broadcaster, logger *zap.Logger) *Service {
	return &Service{
		messages:    messages,
		authz:       authz,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

// Create persists the message, then fans it out. A fanout failure never fails the call.
func (s *Service) Create(ctx context.Context, caller Caller, in CreateInput) (*model.Message, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, ErrProjectRequired
	}
	attachments := make([]string, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		if a = strings.TrimSpace(a); a != "" {
			attachments = append(attachments, a)
		}
	}
	if strings.TrimSpace(in.Body) == "" && len(attachments) == 0 {
		return nil, ErrInvalidInput
	}
	if uuid.Validate(in.ProjectID) != nil {
		return nil, ErrProjectNotFound
	}
	if err := s.authz.Authorize(ctx, caller.UserID, caller.Role, in.ProjectID); err != nil {
		return nil, err
	}

	m := &model.Message{
		ID:          uuid.NewString(),
		ProjectID:   in.ProjectID,
		SenderID:    caller.UserID,
		Body:        in.Body,
		Attachments: attachments,
		CreatedAt:   s.now().UTC(),
	}
	evt := &repository.OutboxEvent{
		AggregateType: "message",
		AggregateID:   m.ID,
		RoutingKey:    mqcontracts.RoutingKeyMessageCreated,
		Payload: mqcontracts.MessageCreatedPayload{
			EventID:        uuid.NewString(),
			TraceID:        trace.FromContext(ctx),
			MessageID:      m.ID,
			ProjectID:      m.ProjectID,
			SenderID:       caller.UserID,
			HasAttachments: len(attachments) > 0,
			CreatedAt:      m.CreatedAt,
		},
	}

	if err := s.messages.Create(ctx, m, evt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if err := s.broadcaster.Broadcast(ctx, m.ProjectID, realtime.MessageCreated(m)); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Message fanout failed",
			zap.String("message_id", m.ID),
			zap.String("project_id", m.ProjectID),
			zap.Error(err),
		)
	}
	return m, nil
}

// ListByProject returns every message of the project in creation order.
func (s *Service) ListByProject(ctx context.Context, caller Caller, projectID string) ([]model.Message, error) {
	if uuid.Validate(projectID) != nil {
		return []model.Message{}, nil
	}
	if err := s.authz.Authorize(ctx, caller.UserID, caller.Role, projectID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

// Search returns matching messages newest first, one bounded page at a time.
func (s *Service) Search(ctx context.Context, caller Caller, in SearchInput) ([]model.Message, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, ErrProjectRequired
	}
	if uuid.Validate(in.ProjectID) != nil {
		return []model.Message{}, nil
	}
	if err := s.authz.Authorize(ctx, caller.UserID, caller.Role, in.ProjectID); err != nil {
		return nil, err
	}

	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	msgs, err := s.messages.Search(ctx, model.MessageFilter{
		ProjectID:      in.ProjectID,
		Query:          strings.TrimSpace(in.Query),
		HasAttachments: in.HasAttachments,
		From:           in.From,
		To:             in.To,
		Limit:          ClampLimit(in.Limit),
		Offset:         offset,
	})
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}
	return msgs, nil
}

// ClampLimit maps a requested page size into [1, MaxSearchLimit]; nil yields the default.
func ClampLimit(limit *int) int {
	switch {
	case limit == nil:
		return DefaultSearchLimit
	case *limit < 1:
		return 1
	case *limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return *limit
	}
}
