package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/internal/repository/mocks"
)

type gateFunc func(investorID string, p *model.Project) bool

func (g gateFunc) CanView(_ context.Context, investorID string, p *model.Project) (bool, error) {
	return g(investorID, p), nil
}

func TestRoomAuthorizer(t *testing.T) {
	project := &model.Project{ID: "P", OwnerID: "owner"}
	projects := &mocks.ProjectRepository{}
	projects.On("Get", mock.Anything, "P").Return(project, nil)
	projects.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	tasks := &mocks.TaskRepository{}
	tasks.On("IsAssigneeOnProject", mock.Anything, "P", "expert").Return(true, nil)
	tasks.On("IsAssigneeOnProject", mock.Anything, "P", mock.Anything).Return(false, nil)

	gate := gateFunc(func(investorID string, _ *model.Project) bool { return investorID == "approved-investor" })
	authz := NewRoomAuthorizer(projects, tasks, gate)
	ctx := context.Background()

	assert.NoError(t, authz.Authorize(ctx, "someone", "admin", "P"))
	assert.NoError(t, authz.Authorize(ctx, "owner", "founder", "P"))
	assert.NoError(t, authz.Authorize(ctx, "expert", "expert", "P"))
	assert.NoError(t, authz.Authorize(ctx, "approved-investor", "investor", "P"))
	assert.ErrorIs(t, authz.Authorize(ctx, "stranger", "investor", "P"), ErrForbidden)
	assert.ErrorIs(t, authz.Authorize(ctx, "owner", "founder", "missing"), ErrProjectNotFound)
}
