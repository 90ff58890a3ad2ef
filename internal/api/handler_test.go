package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/internal/repository/mocks"
	"dealroom/internal/service/access"
	"dealroom/pkg/util"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
}

type accessFixture struct {
	projects *mocks.ProjectRepository
	requests *mocks.AccessRequestRepository
	settings *mocks.SettingsRepository
	router   *gin.Engine
}

func as(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetIdentity(c, &util.Claims{UserID: userID, Role: role})
		c.Next()
	}
}

func newAccessFixture(userID, role string) *accessFixture {
	f := &accessFixture{
		projects: &mocks.ProjectRepository{},
		requests: &mocks.AccessRequestRepository{},
		settings: &mocks.SettingsRepository{},
	}
	svc := access.NewService(f.projects, f.requests, f.settings, 70, zap.NewNop())
	inv := NewInvestorHandler(svc, zap.NewNop())
	adm := NewAdminHandler(svc, nil, 70, zap.NewNop())

	r := gin.New()
	r.Use(as(userID, role))
	r.GET("/investor/projects/:id", inv.Dealroom)
	r.POST("/investor/access-requests", inv.RequestAccess)
	r.GET("/admin/access-requests", adm.ListAccessRequests)
	r.PATCH("/admin/access-requests/:id", adm.SetAccessStatus)
	r.GET("/admin/thresholds", adm.GetThreshold)
	r.PATCH("/admin/thresholds", adm.SetThreshold)
	f.router = r
	return f
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func scorePtr(v float64) *float64 { return &v }

func gatedProject(score float64) *model.Project {
	return &model.Project{
		ID:           "p1",
		OwnerID:      "founder",
		Title:        "Solar",
		Visibility:   model.VisibilityPrivate,
		SuccessScore: scorePtr(score),
		Plan:         json.RawMessage(`{"phases":2}`),
		Budget:       json.RawMessage(`{"total":1000}`),
		Roadmap:      json.RawMessage(`[]`),
	}
}

func TestDealroom_ScoreAboveThresholdIsVisible(t *testing.T) {
	f := newAccessFixture("inv1", "investor")
	f.settings.On("GetNumber", mock.Anything, access.ThresholdKey).Return(70.0, true, nil)
	f.projects.On("Get", mock.Anything, "p1").Return(gatedProject(72), nil)

	w := do(f.router, http.MethodGet, "/investor/projects/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `{"phases":2}`, string(body["plan"]))
	assert.JSONEq(t, `{"total":1000}`, string(body["budget"]))
	assert.Contains(t, body, "roadmap")
	f.requests.AssertNotCalled(t, "HasApproved", mock.Anything, mock.Anything, mock.Anything)
}

func TestDealroom_BelowThresholdWithoutApprovalIsDenied(t *testing.T) {
	f := newAccessFixture("inv1", "investor")
	f.settings.On("GetNumber", mock.Anything, access.ThresholdKey).Return(0.0, false, nil)
	f.projects.On("Get", mock.Anything, "p1").Return(gatedProject(50), nil)
	f.requests.On("HasApproved", mock.Anything, "p1", "inv1").Return(false, nil)

	w := do(f.router, http.MethodGet, "/investor/projects/p1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Not approved"}`, w.Body.String())
}

func TestDealroom_BelowThresholdWithApprovalIsVisible(t *testing.T) {
	f := newAccessFixture("inv1", "investor")
	f.settings.On("GetNumber", mock.Anything, access.ThresholdKey).Return(70.0, true, nil)
	f.projects.On("Get", mock.Anything, "p1").Return(gatedProject(50), nil)
	f.requests.On("HasApproved", mock.Anything, "p1", "inv1").Return(true, nil)

	w := do(f.router, http.MethodGet, "/investor/projects/p1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDealroom_UnknownProject(t *testing.T) {
	f := newAccessFixture("inv1", "investor")
	f.projects.On("Get", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	w := do(f.router, http.MethodGet, "/investor/projects/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestAccess_CreatedThenEchoed(t *testing.T) {
	f := newAccessFixture("inv1", "investor")
	f.projects.On("Get", mock.Anything, "p1").Return(gatedProject(10), nil)
	existing := &model.AccessRequest{ID: "r1", ProjectID: "p1", InvestorID: "inv1", Status: model.AccessRequested}
	f.requests.On("FindByPair", mock.Anything, "p1", "inv1").Return(nil, repository.ErrNotFound).Once()
	f.requests.On("CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
	f.requests.On("FindByPair", mock.Anything, "p1", "inv1").Return(existing, nil)

	w := do(f.router, http.MethodPost, "/investor/access-requests", gin.H{"projectId": "p1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(f.router, http.MethodPost, "/investor/access-requests", gin.H{"projectId": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"r1"`)
}

func TestRequestAccess_MissingProjectIDReportsField(t *testing.T) {
	f := newAccessFixture("inv1", "investor")
	w := do(f.router, http.MethodPost, "/investor/access-requests", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid input","fields":{"projectId":"required"}}`, w.Body.String())
}

func TestSetAccessStatus(t *testing.T) {
	f := newAccessFixture("admin1", "admin")
	current := &model.AccessRequest{ID: "r1", ProjectID: "p1", InvestorID: "inv1", Status: model.AccessRequested}
	f.requests.On("Get", mock.Anything, "r1").Return(current, nil)
	f.projects.On("Get", mock.Anything, "p1").Return(gatedProject(10), nil)
	f.requests.On("UpdateStatus", mock.Anything, "r1", model.AccessApproved, mock.AnythingOfType("*time.Time"), mock.Anything).
		Return(&model.AccessRequest{ID: "r1", Status: model.AccessApproved, GrantedAt: new(time.Time)}, nil)

	w := do(f.router, http.MethodPatch, "/admin/access-requests/r1", gin.H{"status": "approved"})
	assert.Equal(t, http.StatusOK, w.Code)

	// no body approves
	w = do(f.router, http.MethodPatch, "/admin/access-requests/r1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(f.router, http.MethodPatch, "/admin/access-requests/r1", gin.H{"status": "requested"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "approved|rejected|revoked")
}

func TestListAccessRequests_StatusFilter(t *testing.T) {
	f := newAccessFixture("admin1", "admin")
	f.requests.On("ListByStatus", mock.Anything, "requested").Return([]model.AccessRequest{{ID: "a"}}, nil)
	f.requests.On("ListByStatus", mock.Anything, "").Return([]model.AccessRequest{{ID: "a"}, {ID: "b"}}, nil)
	f.requests.On("ListByStatus", mock.Anything, "rejected").Return([]model.AccessRequest{}, nil)

	var got []model.AccessRequest
	w := do(f.router, http.MethodGet, "/admin/access-requests", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	w = do(f.router, http.MethodGet, "/admin/access-requests?status=all", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	w = do(f.router, http.MethodGet, "/admin/access-requests?status=rejected", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	f.requests.AssertExpectations(t)
}

func TestThresholds(t *testing.T) {
	f := newAccessFixture("admin1", "admin")
	f.settings.On("GetNumber", mock.Anything, access.ThresholdKey).Return(0.0, false, nil)
	f.settings.On("SetNumber", mock.Anything, access.ThresholdKey, 82.5).Return(nil)
	f.settings.On("SetNumber", mock.Anything, access.ThresholdKey, 70.0).Return(nil)

	w := do(f.router, http.MethodGet, "/admin/thresholds", nil)
	assert.JSONEq(t, `{"investorScoreThreshold":70}`, w.Body.String())

	w = do(f.router, http.MethodPatch, "/admin/thresholds", gin.H{"investorScoreThreshold": 82.5})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"investorScoreThreshold":82.5}`, w.Body.String())

	w = do(f.router, http.MethodPatch, "/admin/thresholds", gin.H{})
	assert.JSONEq(t, `{"investorScoreThreshold":70}`, w.Body.String())

	w = do(f.router, http.MethodPatch, "/admin/thresholds", gin.H{"investorScoreThreshold": "high"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.settings.AssertNumberOfCalls(t, "SetNumber", 2)
}
