// Package access implements the investor visibility gate and the access request workflow.
package access

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
	"dealroom/pkg/metrics"
	"dealroom/pkg/trace"
)

// ThresholdKey names the system setting holding the investor score threshold.
const ThresholdKey = "INVESTOR_SCORE_THRESHOLD"

type Service struct {
	projects         repository.ProjectRepository
	requests         repository.AccessRequestRepository
	settings         repository.SettingsRepository
	defaultThreshold float64
	logger           *zap.Logger
	now              func() time.Time
}

func NewService(
	projects repository.ProjectRepository,
	requests repository.AccessRequestRepository,
	settings repository.SettingsRepository,
	defaultThreshold float64,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:         projects,
		requests:         requests,
		settings:         settings,
		defaultThreshold: defaultThreshold,
		logger:           logger,
		now:              time.Now,
	}
}

// Threshold returns the stored threshold or the configured default when unset.
func (s *Service) Threshold(ctx context.Context) (float64, error) {
	v, ok, err := s.settings.GetNumber(ctx, ThresholdKey)
	if err != nil {
		return 0, fmt.Errorf("reading threshold: %w", err)
	}
	if !ok {
		return s.defaultThreshold, nil
	}
	return v, nil
}

func (s *Service) SetThreshold(ctx context.Context, value float64) error {
	if err := s.settings.SetNumber(ctx, ThresholdKey, value); err != nil {
		return fmt.Errorf("writing threshold: %w", err)
	}
	logger.WithTrace(ctx, s.logger).Info("Investor score threshold updated", zap.Float64("threshold", value))
	return nil
}

// CanView evaluates the gate for a loaded project.
func (s *Service) CanView(ctx context.Context, investorID string, p *model.Project) (bool, error) {
	threshold, err := s.Threshold(ctx)
	if err != nil {
		return false, err
	}
	if IsOpenByDefault(p, threshold) {
		metrics.IncrementGateDecision("open")
		return true, nil
	}

	approved, err := s.requests.HasApproved(ctx, p.ID, investorID)
	if err != nil {
		return false, fmt.Errorf("checking approval: %w", err)
	}
	if approved {
		metrics.IncrementGateDecision("approved")
		return true, nil
	}
	metrics.IncrementGateDecision("denied")
	return false, nil
}

// Dealroom returns the gated project detail.
func (s *Service) Dealroom(ctx context.Context, investorID, projectID string) (*model.Dealroom, error) {
	p, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.CanView(ctx, investorID, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotApproved
	}

	d := p.ToDealroom()
	return &d, nil
}

// Discovery lists projects that are open by default.
func (s *Service) Discovery(ctx context.Context) ([]model.ProjectSummary, error) {
	threshold, err := s.Threshold(ctx)
	if err != nil {
		return nil, err
	}
	return s.projects.ListOpenByDefault(ctx, threshold)
}

// RequestAccess is idempotent per (investor, project): an existing request is
// returned unchanged with created=false.
func (s *Service) RequestAccess(ctx context.Context, investorID, projectID string) (*model.AccessRequest, bool, error) {
	p, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.requests.FindByPair(ctx, p.ID, investorID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("finding access request: %w", err)
	}

	now := s.now().UTC()
	req := &model.AccessRequest{
		ID:         uuid.NewString(),
		ProjectID:  p.ID,
		InvestorID: investorID,
		Status:     model.AccessRequested,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	evt := &repository.OutboxEvent{
		AggregateType: "access_request",
		AggregateID:   req.ID,
		RoutingKey:    mqcontracts.RoutingKeyAccessRequestCreated,
		Payload: mqcontracts.AccessRequestCreatedPayload{
			EventID:    uuid.NewString(),
			TraceID:    trace.FromContext(ctx),
			RequestID:  req.ID,
			ProjectID:  p.ID,
			InvestorID: investorID,
			OwnerID:    p.OwnerID,
			CreatedAt:  now,
		},
	}

	created, err := s.requests.CreateIfAbsent(ctx, req, evt)
	if err != nil {
		return nil, false, fmt.Errorf("creating access request: %w", err)
	}
	if created {
		logger.WithTrace(ctx, s.logger).Info("Access requested",
			zap.String("request_id", req.ID),
			zap.String("project_id", p.ID),
			zap.String("investor_id", investorID),
		)
	}
	return req, created, nil
}

// SetStatus applies an admin review. Approval stamps granted_at; other targets leave it as is.
// Any current status may move to any valid target.
func (s *Service) SetStatus(ctx context.Context, requestID, status string) (*model.AccessRequest, error) {
	if !ValidTargetStatus(status) {
		return nil, ErrInvalidStatus
	}

	current, err := s.requests.Get(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading access request: %w", err)
	}

	now := s.now().UTC()
	var grantedAt *time.Time
	if status == model.AccessApproved {
		grantedAt = &now
	}

	payload := mqcontracts.AccessRequestStatusChangedPayload{
		EventID:    uuid.NewString(),
		TraceID:    trace.FromContext(ctx),
		RequestID:  current.ID,
		ProjectID:  current.ProjectID,
		InvestorID: current.InvestorID,
		Status:     status,
		GrantedAt:  current.GrantedAt,
		ChangedAt:  now,
	}
	if grantedAt != nil {
		payload.GrantedAt = grantedAt
	}
	if p, err := s.projects.Get(ctx, current.ProjectID); err == nil {
		payload.ProjectTitle = p.Title
	}

	updated, err := s.requests.UpdateStatus(ctx, current.ID, status, grantedAt, &repository.OutboxEvent{
		AggregateType: "access_request",
		AggregateID:   current.ID,
		RoutingKey:    mqcontracts.RoutingKeyAccessRequestStatusChanged,
		Payload:       payload,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating access request: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("Access request reviewed",
		zap.String("request_id", updated.ID),
		zap.String("from", current.Status),
		zap.String("to", status),
	)
	return updated, nil
}

// ListMine returns the investor's own requests, most recently granted first.
func (s *Service) ListMine(ctx context.Context, investorID string) ([]model.AccessRequest, error) {
	return s.requests.ListByInvestor(ctx, investorID)
}

// ListForReview lists requests in status; an empty status lists all.
func (s *Service) ListForReview(ctx context.Context, status string) ([]model.AccessRequest, error) {
	return s.requests.ListByStatus(ctx, status)
}

func (s *Service) loadProject(ctx context.Context, projectID string) (*model.Project, error) {
	p, err := s.projects.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return p, nil
}
