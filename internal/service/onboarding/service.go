// Package onboarding derives per-role profile completeness and stores the profile sections.
package onboarding

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
	"dealroom/pkg/rbac"
)

const defaultAvailability = "open"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNameRequired     = errors.New("Name is required")
	ErrCategoryRequired = errors.New("At least one category")
	ErrFocusRequired    = errors.New("At least one focus area")
)

type FounderInput struct {
	Name        string
	CompanyName *string
	Location    *string
	Website     *string
}

type ExpertInput struct {
	Categories     []string
	Skills         []string
	Location       *string
	PortfolioLinks []string
	Availability   *string
}

type InvestorInput struct {
	FocusAreas      []string
	StageFocus      []string
	GeographicFocus []string
}

// CompleteInput carries any subset of the profile sections.
type CompleteInput struct {
	Founder  *FounderInput
	Expert   *ExpertInput
	Investor *InvestorInput
}

type Service struct {
	users     repository.UserRepository
	experts   repository.ExpertRepository
	investors repository.InvestorProfileRepository
	logger    *zap.Logger
}

func NewService(users repository.UserRepository, experts repository.ExpertRepository, investors repository.InvestorProfileRepository, logger *zap.Logger) *Service {
	return &Service{users: users, experts: experts, investors: investors, logger: logger}
}

// State reports whether the caller's role-specific profile is filled in.
func (s *Service) State(ctx context.Context, userID string) (*model.OnboardingState, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	name := ""
	if u.Name != nil {
		name = *u.Name
	}
	st := &model.OnboardingState{
		Role: u.Role,
		User: model.OnboardingUser{ID: u.ID, Email: u.Email, Name: name},
	}

	switch u.Role {
	case rbac.RoleFounder:
		st.Complete = strings.TrimSpace(name) != ""
		st.Details.Founder = &model.FounderDetails{Name: name}
	case rbac.RoleExpert:
		e, err := s.experts.FindByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("loading expert profile: %w", err)
		}
		st.Details.Expert = e
		st.Complete = e != nil && len(e.Categories) > 0
	case rbac.RoleInvestor:
		p, err := s.investors.FindByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("loading investor profile: %w", err)
		}
		st.Details.Investor = p
		st.Complete = p != nil && len(p.FocusAreas) > 0
	case rbac.RoleAdmin:
		st.Complete = true
	}
	return st, nil
}

// Complete stores every section present in the input, then returns the fresh state.
func (s *Service) Complete(ctx context.Context, userID string, in CompleteInput) (*model.OnboardingState, error) {
	if in.Founder != nil && strings.TrimSpace(in.Founder.Name) == "" {
		return nil, ErrNameRequired
	}
	if in.Expert != nil && len(nonBlank(in.Expert.Categories)) == 0 {
		return nil, ErrCategoryRequired
	}
	if in.Investor != nil && len(nonBlank(in.Investor.FocusAreas)) == 0 {
		return nil, ErrFocusRequired
	}

	if in.Founder != nil {
		err := s.users.UpdateName(ctx, userID, strings.TrimSpace(in.Founder.Name))
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("updating name: %w", err)
		}
	}

	if in.Expert != nil {
		availability := defaultAvailability
		if in.Expert.Availability != nil && strings.TrimSpace(*in.Expert.Availability) != "" {
			availability = strings.TrimSpace(*in.Expert.Availability)
		}
		_, err := s.experts.Upsert(ctx, &model.Expert{
			ID:             uuid.NewString(),
			UserID:         userID,
			Categories:     nonBlank(in.Expert.Categories),
			Skills:         nonBlank(in.Expert.Skills),
			Location:       in.Expert.Location,
			PortfolioLinks: nonBlank(in.Expert.PortfolioLinks),
			Availability:   availability,
		})
		if err != nil {
			return nil, fmt.Errorf("saving expert profile: %w", err)
		}
	}

	if in.Investor != nil {
		_, err := s.investors.Upsert(ctx, &model.InvestorProfile{
			ID:              uuid.NewString(),
			UserID:          userID,
			FocusAreas:      nonBlank(in.Investor.FocusAreas),
			StageFocus:      nonBlank(in.Investor.StageFocus),
			GeographicFocus: nonBlank(in.Investor.GeographicFocus),
		})
		if err != nil {
			return nil, fmt.Errorf("saving investor profile: %w", err)
		}
	}

	logger.WithTrace(ctx, s.logger).Info("Onboarding updated",
		zap.String("user_id", userID),
		zap.Bool("founder", in.Founder != nil),
		zap.Bool("expert", in.Expert != nil),
		zap.Bool("investor", in.Investor != nil),
	)
	return s.State(ctx, userID)
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
