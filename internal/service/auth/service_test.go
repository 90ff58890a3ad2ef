package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/internal/repository/mocks"
	"dealroom/pkg/util"
)

const secret = "s3cret"

func TestRegister_DefaultsToFounderAndIssuesToken(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "ada@example.com" && u.Role == "founder" && u.ID != "" && u.PasswordHash != "secret1"
	})).Return(nil)

	svc := NewService(users, secret, time.Hour, zap.NewNop())
	sess, err := svc.Register(context.Background(), RegisterInput{Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)

	claims, err := util.ParseJWT(sess.Token, secret)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, "founder", claims.Role)
	assert.Equal(t, "ada@example.com", claims.Email)
	users.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	svc := NewService(users, secret, time.Hour, zap.NewNop())
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "secret1", Role: "investor"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc := NewService(&mocks.UserRepository{}, secret, time.Hour, zap.NewNop())
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "secret1", Role: "superuser"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogin(t *testing.T) {
	hash, err := util.HashPassword("secret1")
	require.NoError(t, err)
	stored := &model.User{ID: "u1", Email: "a@b.c", PasswordHash: hash, Role: "investor"}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	users := &mocks.UserRepository{}
	users.On("FindByEmail", mock.Anything, "a@b.c").Return(stored, nil)
	users.On("FindByEmail", mock.Anything, "nobody@b.c").Return(nil, repository.ErrNotFound)
	users.On("TouchLastLogin", mock.Anything, "u1", fixed).Return(nil)

	svc := NewService(users, secret, time.Hour, zap.NewNop())
	svc.now = func() time.Time { return fixed }

	sess, err := svc.Login(context.Background(), "A@b.c", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.User.ID)
	users.AssertCalled(t, "TouchLastLogin", mock.Anything, "u1", fixed)

	_, err = svc.Login(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@b.c", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
