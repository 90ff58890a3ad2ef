// Package project holds the founder-facing project operations and milestone reads.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrNotOwner          = errors.New("not project owner")
	ErrTitleTooShort     = errors.New("title must be at least 3 characters")
	ErrInvalidVisibility = errors.New("visibility must be private|investor_preview")
)

const minTitleLength = 3

type CreateInput struct {
	Title        string
	Summary      *string
	Problem      *string
	Solution     *string
	TargetMarket *string
}

type Service struct {
	projects   repository.ProjectRepository
	milestones repository.MilestoneRepository
	logger     *zap.Logger
}

func NewService(projects repository.ProjectRepository, milestones repository.MilestoneRepository, logger *zap.Logger) *Service {
	return &Service{projects: projects, milestones: milestones, logger: logger}
}

// ListOwn returns the founder's projects, newest first.
func (s *Service) ListOwn(ctx context.Context, ownerID string) ([]model.Project, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*model.Project, error) {
	title := strings.TrimSpace(in.Title)
	if len([]rune(title)) < minTitleLength {
		return nil, ErrTitleTooShort
	}

	p := &model.Project{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        title,
		Summary:      in.Summary,
		Problem:      in.Problem,
		Solution:     in.Solution,
		TargetMarket: in.TargetMarket,
		Visibility:   model.VisibilityPrivate,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("Project created", zap.String("project_id", p.ID), zap.String("owner_id", ownerID))
	return p, nil
}

// GetOwn hides projects owned by someone else behind ErrProjectNotFound.
func (s *Service) GetOwn(ctx context.Context, ownerID, projectID string) (*model.Project, error) {
	p, err := s.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// Load fetches any project by id.
func (s *Service) Load(ctx context.Context, projectID string) (*model.Project, error) {
	p, err := s.projects.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return p, nil
}

// LockBaseline forces the project back to private.
func (s *Service) LockBaseline(ctx context.Context, ownerID, projectID string) (*model.Project, error) {
	return s.SetVisibility(ctx, ownerID, projectID, model.VisibilityPrivate)
}

func (s *Service) SetVisibility(ctx context.Context, ownerID, projectID, visibility string) (*model.Project, error) {
	if visibility != model.VisibilityPrivate && visibility != model.VisibilityInvestorPreview {
		return nil, ErrInvalidVisibility
	}

	p, err := s.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	updated, err := s.projects.UpdateVisibility(ctx, projectID, visibility)
	if err != nil {
		return nil, fmt.Errorf("updating visibility: %w", err)
	}
	logger.WithTrace(ctx, s.logger).Info("Project visibility changed",
		zap.String("project_id", projectID),
		zap.String("visibility", visibility),
	)
	return updated, nil
}

// Milestones lists a project's milestones by start date, each with its tasks.
func (s *Service) Milestones(ctx context.Context, projectID string) ([]model.Milestone, error) {
	if _, err := s.Load(ctx, projectID); err != nil {
		return nil, err
	}
	milestones, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	return milestones, nil
}
