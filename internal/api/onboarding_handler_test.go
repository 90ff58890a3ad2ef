package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/internal/repository/mocks"
	"dealroom/internal/service/onboarding"
)

func newOnboardingRouter(userID string, users *mocks.UserRepository, experts *mocks.ExpertRepository, investors *mocks.InvestorProfileRepository) *gin.Engine {
	h := NewOnboardingHandler(onboarding.NewService(users, experts, investors, zap.NewNop()), zap.NewNop())
	r := gin.New()
	r.Use(as(userID, ""))
	r.GET("/onboarding/state", h.State)
	r.POST("/onboarding/complete", h.Complete)
	return r
}

func TestOnboarding_StateAndComplete(t *testing.T) {
	users := &mocks.UserRepository{}
	experts := &mocks.ExpertRepository{}
	investors := &mocks.InvestorProfileRepository{}
	users.On("FindByID", mock.Anything, "expert1").Return(&model.User{ID: "expert1", Email: "e@x.io", Role: "expert"}, nil)
	experts.On("FindByUserID", mock.Anything, "expert1").Return(nil, repository.ErrNotFound).Once()
	experts.On("Upsert", mock.Anything, mock.Anything).Return(&model.Expert{}, nil).Once()
	experts.On("FindByUserID", mock.Anything, "expert1").Return(&model.Expert{UserID: "expert1", Categories: []string{"cad"}}, nil)
	r := newOnboardingRouter("expert1", users, experts, investors)

	w := do(r, http.MethodGet, "/onboarding/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"expert","user":{"id":"expert1","email":"e@x.io","name":""},"complete":false,"details":{}}`, w.Body.String())

	w = do(r, http.MethodPost, "/onboarding/complete", gin.H{"expert": gin.H{"categories": []string{}}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must contain at least 1 items", fieldErrors(t, w.Body.Bytes())["categories"])

	w = do(r, http.MethodPost, "/onboarding/complete", gin.H{"role": "expert", "expert": gin.H{"categories": []string{"cad"}}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"complete":true`)
	experts.AssertExpectations(t)
}
