// Package auth registers accounts and issues access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
	"dealroom/pkg/rbac"
	"dealroom/pkg/util"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

type RegisterInput struct {
	Email    string
	Password string
	Role     string
	Name     *string
}

// Session is what register and login hand back to the client.
type Session struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

type Service struct {
	users     repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a new user. Role defaults to founder.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	role := in.Role
	if role == "" {
		role = rbac.RoleFounder
	}
	if !rbac.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Name:         in.Name,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("User registered", zap.String("user_id", u.ID), zap.String("role", role))
	return s.session(u)
}

// Login checks credentials, stamps the last login time and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		// login still succeeds; the timestamp is informational
		logger.WithTrace(ctx, s.logger).Warn("Failed to stamp last login", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}
	return s.session(u)
}

func (s *Service) session(u *model.User) (*Session, error) {
	token, err := util.GenerateJWT(u.ID, u.Role, u.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &Session{Token: token, User: u.Summary()}, nil
}
