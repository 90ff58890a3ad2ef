// Package ai runs project scoring against the external AI service.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
	"dealroom/pkg/rbac"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrForbidden       = errors.New("forbidden")
	// ErrUpstream wraps every failure talking to the scoring service, including an open breaker.
	ErrUpstream = errors.New("ai-service error")
)

// Generator is satisfied by *Client.
type Generator interface {
	Generate(ctx context.Context, in GenerateRequest) (*GenerateResponse, error)
}

// Scored is the persisted scoring result returned to the caller.
type Scored struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	SuccessScore *float64        `json:"successScore"`
	Plan         json.RawMessage `json:"aiPlanJson"`
	Budget       json.RawMessage `json:"aiBudgetJson"`
	Roadmap      json.RawMessage `json:"aiRoadmapJson"`
}

type Explanation struct {
	SuccessScore *float64        `json:"successScore"`
	Explain      json.RawMessage `json:"explain"`
}

type Service struct {
	projects  repository.ProjectRepository
	generator Generator
	logger    *zap.Logger
}

func NewService(projects repository.ProjectRepository, generator Generator, logger *zap.Logger) *Service {
	return &Service{projects: projects, generator: generator, logger: logger}
}

// Generate scores the project and persists plan, budget, roadmap and score.
func (s *Service) Generate(ctx context.Context, userID, role, projectID string) (*Scored, error) {
	p, out, err := s.run(ctx, userID, role, projectID)
	if err != nil {
		return nil, err
	}

	updated, err := s.projects.UpdateAIOutput(ctx, p.ID, repository.AIOutput{
		Plan:         out.Plan,
		Budget:       out.Budget,
		Roadmap:      out.Roadmap,
		SuccessScore: out.SuccessScore,
	})
	if err != nil {
		return nil, fmt.Errorf("saving ai output: %w", err)
	}

	log := logger.WithTrace(ctx, s.logger).With(zap.String("project_id", p.ID))
	if updated.SuccessScore != nil {
		log = log.With(zap.Float64("success_score", *updated.SuccessScore))
	}
	log.Info("Project scored")

	return &Scored{
		ID:           updated.ID,
		Title:        updated.Title,
		SuccessScore: updated.SuccessScore,
		Plan:         updated.Plan,
		Budget:       updated.Budget,
		Roadmap:      updated.Roadmap,
	}, nil
}

// Explain asks for a fresh score with its explanation and stores nothing.
func (s *Service) Explain(ctx context.Context, userID, role, projectID string) (*Explanation, error) {
	_, out, err := s.run(ctx, userID, role, projectID)
	if err != nil {
		return nil, err
	}
	return &Explanation{SuccessScore: out.SuccessScore, Explain: out.Explain}, nil
}

func (s *Service) run(ctx context.Context, userID, role, projectID string) (*model.Project, *GenerateResponse, error) {
	p, err := s.projects.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading project: %w", err)
	}
	if role != rbac.RoleAdmin && p.OwnerID != userID {
		return nil, nil, ErrForbidden
	}

	summary := ""
	if p.Summary != nil {
		summary = *p.Summary
	}
	out, err := s.generator.Generate(ctx, GenerateRequest{Title: p.Title, Summary: summary})
	if err != nil {
		logger.WithTrace(ctx, s.logger).Warn("AI scoring failed", zap.String("project_id", p.ID), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return p, out, nil
}
