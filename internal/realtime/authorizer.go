package realtime

import (
	"context"
	"errors"
	"fmt"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/rbac"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrProjectNotFound = errors.New("project not found")
)

type ProjectGetter interface {
	Get(ctx context.Context, id string) (*model.Project, error)
}

type AssigneeChecker interface {
	IsAssigneeOnProject(ctx context.Context, projectID, userID string) (bool, error)
}

// Gate is satisfied by access.Service.
type Gate interface {
	CanView(ctx context.Context, investorID string, p *model.Project) (bool, error)
}

// RoomAuthorizer decides who may listen to a project's live messages:
// admins, the owner, task assignees on the project, and anyone the access gate lets through.
type RoomAuthorizer struct {
	projects ProjectGetter
	tasks    AssigneeChecker
	gate     Gate
}

func NewRoomAuthorizer(projects ProjectGetter, tasks AssigneeChecker, gate Gate) *RoomAuthorizer {
	return &RoomAuthorizer{projects: projects, tasks: tasks, gate: gate}
}

func (a *RoomAuthorizer) Authorize(ctx context.Context, userID, role, projectID string) error {
	p, err := a.projects.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	if role == rbac.RoleAdmin || p.OwnerID == userID {
		return nil
	}

	assigned, err := a.tasks.IsAssigneeOnProject(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("checking assignment: %w", err)
	}
	if assigned {
		return nil
	}

	ok, err := a.gate.CanView(ctx, userID, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
