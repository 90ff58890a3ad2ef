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
	"dealroom/internal/service/shortlist"
)

const (
	inviteProject   = "3f5a7c9e-1b3d-4f5a-8c9e-1b3d5f7a9c1e"
	inviteExpert    = "8e6c4a2f-0d8b-4a6c-9e2f-0d8b6a4c2e0f"
	inviteShortlist = "1d3f5b7a-9c1e-4d3f-8b7a-9c1e3d5f7b9a"
)

type shortlistFixture struct {
	projects   *mocks.ProjectRepository
	experts    *mocks.ExpertRepository
	shortlists *mocks.ShortlistRepository
	router     *gin.Engine
}

func newShortlistFixture(userID, role string) *shortlistFixture {
	f := &shortlistFixture{
		projects:   &mocks.ProjectRepository{},
		experts:    &mocks.ExpertRepository{},
		shortlists: &mocks.ShortlistRepository{},
	}
	f.projects.On("Get", mock.Anything, inviteProject).Return(&model.Project{ID: inviteProject, OwnerID: "founder1", Title: "Drone"}, nil).Maybe()
	f.experts.On("Get", mock.Anything, inviteExpert).Return(&model.Expert{ID: inviteExpert, UserID: "expert1"}, nil).Maybe()
	h := NewShortlistHandler(shortlist.NewService(f.projects, f.experts, f.shortlists, zap.NewNop()), zap.NewNop())

	r := gin.New()
	r.Use(as(userID, role))
	r.POST("/shortlist/projects/:projectId/invite", h.Invite)
	r.PATCH("/shortlist/shortlists/:id", h.Respond)
	r.GET("/experts/me/shortlists", h.Mine)
	f.router = r
	return f
}

func TestInvite_Created(t *testing.T) {
	f := newShortlistFixture("founder1", "founder")
	f.shortlists.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	w := do(f.router, http.MethodPost, "/shortlist/projects/"+inviteProject+"/invite", gin.H{"expertId": inviteExpert, "reason": "firmware"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"invited"`)
	assert.Contains(t, w.Body.String(), `"reason":"firmware"`)
}

func TestInvite_RejectsBadInputAndStrangers(t *testing.T) {
	f := newShortlistFixture("founder2", "founder")

	w := do(f.router, http.MethodPost, "/shortlist/projects/"+inviteProject+"/invite", gin.H{"expertId": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a uuid", fieldErrors(t, w.Body.Bytes())["expertId"])

	w = do(f.router, http.MethodPost, "/shortlist/projects/"+inviteProject+"/invite", gin.H{"expertId": inviteExpert})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Project not found or not owned by you"}`, w.Body.String())

	f.shortlists.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondInvite(t *testing.T) {
	missing := "00000000-0000-4000-8000-00000000000b"

	f := newShortlistFixture("expert2", "expert")
	f.shortlists.On("Get", mock.Anything, inviteShortlist).Return(&model.Shortlist{ID: inviteShortlist, ExpertID: inviteExpert}, nil)
	f.shortlists.On("Get", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	w := do(f.router, http.MethodPatch, "/shortlist/shortlists/"+inviteShortlist, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Not your invite"}`, w.Body.String())

	w = do(f.router, http.MethodPatch, "/shortlist/shortlists/"+missing, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	w = do(f.router, http.MethodPatch, "/shortlist/shortlists/"+inviteShortlist, gin.H{"status": "invited"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f = newShortlistFixture("expert1", "expert")
	f.shortlists.On("Get", mock.Anything, inviteShortlist).Return(&model.Shortlist{ID: inviteShortlist, ExpertID: inviteExpert}, nil)
	f.shortlists.On("UpdateStatus", mock.Anything, inviteShortlist, model.InviteHired).
		Return(&model.Shortlist{ID: inviteShortlist, Status: model.InviteHired}, nil)

	w = do(f.router, http.MethodPatch, "/shortlist/shortlists/"+inviteShortlist, gin.H{"status": "hired"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"hired"`)
}

func TestMyShortlists(t *testing.T) {
	f := newShortlistFixture("founder1", "founder")
	f.experts.On("FindByUserID", mock.Anything, "founder1").Return(nil, repository.ErrNotFound)

	w := do(f.router, http.MethodGet, "/experts/me/shortlists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
