package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/realtime"
	"dealroom/internal/repository"
	"dealroom/internal/repository/mocks"
	"dealroom/internal/service/access"
	"dealroom/internal/service/message"
	"dealroom/pkg/util"
)

const (
	threadProject = "6f1c1a4e-8c1e-4c55-9a77-3f0f2b7f9d11"
	streamSecret  = "stream-secret"
)

type threadFixture struct {
	projects *mocks.ProjectRepository
	tasks    *mocks.TaskRepository
	requests *mocks.AccessRequestRepository
	settings *mocks.SettingsRepository
	messages *mocks.MessageRepository
	registry *realtime.Registry
	router   *gin.Engine
}

func newThreadFixture(userID, role string) *threadFixture {
	f := &threadFixture{
		projects: &mocks.ProjectRepository{},
		tasks:    &mocks.TaskRepository{},
		requests: &mocks.AccessRequestRepository{},
		settings: &mocks.SettingsRepository{},
		messages: &mocks.MessageRepository{},
		registry: realtime.NewRegistry(8, zap.NewNop()),
	}
	gate := access.NewService(f.projects, f.requests, f.settings, 70, zap.NewNop())
	authz := realtime.NewRoomAuthorizer(f.projects, f.tasks, gate)
	svc := message.NewService(f.messages, authz, f.registry, zap.NewNop())
	h := NewMessageHandler(svc, zap.NewNop())
	stream := NewStreamHandler(f.registry, authz, streamSecret, zap.NewNop())

	r := gin.New()
	r.GET("/messages/stream/:projectId", stream.Stream)
	authed := r.Group("/", as(userID, role))
	authed.POST("/messages", h.Create)
	authed.GET("/messages/by-project/:projectId", h.ListByProject)
	authed.GET("/messages/search", h.Search)
	f.router = r
	return f
}

// privateProject is below the default threshold, so only approval, ownership or assignment opens it.
func (f *threadFixture) privateProject() {
	f.settings.On("GetNumber", mock.Anything, access.ThresholdKey).Return(0.0, false, nil)
	f.projects.On("Get", mock.Anything, threadProject).Return(&model.Project{
		ID:           threadProject,
		OwnerID:      "founder1",
		Title:        "Solar",
		Visibility:   model.VisibilityPrivate,
		SuccessScore: scorePtr(40),
	}, nil)
}

func thread() []model.Message {
	return []model.Message{{
		ID:          "m1",
		ProjectID:   threadProject,
		SenderID:    "founder1",
		Body:        "term sheet v2",
		Attachments: []string{},
		Sender:      &model.UserSummary{ID: "founder1", Email: "f@x.io", Role: "founder"},
	}}
}

func TestMessages_UnapprovedInvestorIsForbidden(t *testing.T) {
	f := newThreadFixture("inv1", "investor")
	f.privateProject()
	f.tasks.On("IsAssigneeOnProject", mock.Anything, threadProject, "inv1").Return(false, nil)
	f.requests.On("HasApproved", mock.Anything, threadProject, "inv1").Return(false, nil)

	w := do(f.router, http.MethodGet, "/messages/by-project/"+threadProject, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())

	w = do(f.router, http.MethodGet, "/messages/search?projectId="+threadProject+"&q=term", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(f.router, http.MethodPost, "/messages", gin.H{"projectId": threadProject, "body": "let me in"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Empty(t, f.messages.Calls)
}

func TestMessages_ApprovedInvestorReadsThread(t *testing.T) {
	f := newThreadFixture("inv1", "investor")
	f.privateProject()
	f.tasks.On("IsAssigneeOnProject", mock.Anything, threadProject, "inv1").Return(false, nil)
	f.requests.On("HasApproved", mock.Anything, threadProject, "inv1").Return(true, nil)
	f.messages.On("ListByProject", mock.Anything, threadProject).Return(thread(), nil)

	w := do(f.router, http.MethodGet, "/messages/by-project/"+threadProject, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "term sheet v2", got[0].Body)
}

func TestMessages_OwnerSkipsGate(t *testing.T) {
	f := newThreadFixture("founder1", "founder")
	f.privateProject()
	f.messages.On("ListByProject", mock.Anything, threadProject).Return(thread(), nil)

	w := do(f.router, http.MethodGet, "/messages/by-project/"+threadProject, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	f.requests.AssertNotCalled(t, "HasApproved", mock.Anything, mock.Anything, mock.Anything)
	f.tasks.AssertNotCalled(t, "IsAssigneeOnProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessages_UnknownProject(t *testing.T) {
	f := newThreadFixture("founder1", "founder")
	missing := "0b7d1c7e-2f4a-4d7e-9a51-6f0e8c3b2a10"
	f.projects.On("Get", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	w := do(f.router, http.MethodGet, "/messages/by-project/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(f.router, http.MethodPost, "/messages", gin.H{"projectId": missing, "body": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, w.Body.String())
}

func TestCreateMessage_ReturnsSenderAndFansOut(t *testing.T) {
	f := newThreadFixture("founder1", "founder")
	f.privateProject()
	f.messages.On("Create", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		m := args.Get(1).(*model.Message)
		m.Sender = &model.UserSummary{ID: m.SenderID, Email: "f@x.io", Role: "founder"}
	}).Return(nil)

	sub := f.registry.Subscribe(threadProject)
	defer f.registry.Unsubscribe(sub)

	w := do(f.router, http.MethodPost, "/messages", gin.H{
		"projectId":   threadProject,
		"attachments": []string{"https://files/deck.pdf"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var got model.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "founder1", got.SenderID)
	require.NotNil(t, got.Sender)
	assert.Equal(t, "f@x.io", got.Sender.Email)
	assert.Equal(t, []string{"https://files/deck.pdf"}, got.Attachments)

	select {
	case frame := <-sub.C():
		assert.Contains(t, string(frame), `"type":"message.created"`)
		assert.Contains(t, string(frame), got.ID)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to the stream subscriber")
	}
}

func TestCreateMessage_Validation(t *testing.T) {
	f := newThreadFixture("founder1", "founder")

	w := do(f.router, http.MethodPost, "/messages", gin.H{"body": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid input","fields":{"projectId":"required"}}`, w.Body.String())

	w = do(f.router, http.MethodPost, "/messages", gin.H{"projectId": threadProject, "body": "  ", "attachments": []string{" "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"body or attachments required"}`, w.Body.String())

	assert.Empty(t, f.messages.Calls)
	assert.Empty(t, f.projects.Calls)
}

func TestSearchMessages_QueryParsing(t *testing.T) {
	f := newThreadFixture("founder1", "founder")
	f.privateProject()
	f.messages.On("Search", mock.Anything, mock.MatchedBy(func(mf model.MessageFilter) bool {
		return mf.Limit == 200 && mf.Offset == 10 && mf.HasAttachments && mf.Query == "deck" &&
			mf.From != nil && mf.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) && mf.To == nil
	})).Return(thread(), nil).Once()
	f.messages.On("Search", mock.Anything, mock.MatchedBy(func(mf model.MessageFilter) bool {
		return mf.Limit == 50 && mf.Offset == 0 && !mf.HasAttachments
	})).Return([]model.Message{}, nil).Once()

	w := do(f.router, http.MethodGet,
		"/messages/search?projectId="+threadProject+"&q=deck&limit=500&offset=10&hasAttachments=true&from=2026-03-01", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// only the literal "true" turns the attachment filter on
	w = do(f.router, http.MethodGet, "/messages/search?projectId="+threadProject+"&hasAttachments=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	f.messages.AssertExpectations(t)
}

func TestSearchMessages_RejectsBadInput(t *testing.T) {
	f := newThreadFixture("founder1", "founder")

	w := do(f.router, http.MethodGet, "/messages/search?projectId="+threadProject+"&from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"from"`)

	w = do(f.router, http.MethodGet, "/messages/search?projectId="+threadProject+"&to=2026-13-45", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"to"`)

	w = do(f.router, http.MethodGet, "/messages/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(f.router, http.MethodGet, "/messages/search?projectId=not-a-uuid", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Empty(t, f.messages.Calls)
}

func streamToken(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, userID+"@example.com", streamSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestStream_RejectsMissingOrInvalidToken(t *testing.T) {
	f := newThreadFixture("", "")

	w := do(f.router, http.MethodGet, "/messages/stream/"+threadProject, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(f.router, http.MethodGet, "/messages/stream/"+threadProject+"?token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := util.GenerateJWT("u1", "founder", "u1@example.com", "another-secret", time.Hour)
	require.NoError(t, err)
	w = do(f.router, http.MethodGet, "/messages/stream/"+threadProject+"?token="+other, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, f.projects.Calls)
	assert.False(t, f.registry.Has(threadProject))
}

func TestStream_DeniedAndUnknown(t *testing.T) {
	f := newThreadFixture("", "")
	f.privateProject()
	f.tasks.On("IsAssigneeOnProject", mock.Anything, threadProject, "inv1").Return(false, nil)
	f.requests.On("HasApproved", mock.Anything, threadProject, "inv1").Return(false, nil)
	missing := "0b7d1c7e-2f4a-4d7e-9a51-6f0e8c3b2a10"
	f.projects.On("Get", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	w := do(f.router, http.MethodGet, "/messages/stream/"+threadProject+"?token="+streamToken(t, "inv1", "investor"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(f.router, http.MethodGet, "/messages/stream/"+missing+"?token="+streamToken(t, "inv1", "investor"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.False(t, f.registry.Has(threadProject))
}

func TestStream_AssigneeReceivesPing(t *testing.T) {
	f := newThreadFixture("", "")
	f.privateProject()
	f.tasks.On("IsAssigneeOnProject", mock.Anything, threadProject, "exp1").Return(true, nil)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	url := srv.URL + "/messages/stream/" + threadProject + "?token=" + streamToken(t, "exp1", "expert")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping", strings.TrimSpace(line))

	cancel()
	assert.Eventually(t, func() bool { return !f.registry.Has(threadProject) }, 2*time.Second, 10*time.Millisecond)
}
