package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/internal/repository/mocks"
)

type stubGenerator struct {
	out  *GenerateResponse
	err  error
	seen []GenerateRequest
}

func (g *stubGenerator) Generate(_ context.Context, in GenerateRequest) (*GenerateResponse, error) {
	g.seen = append(g.seen, in)
	return g.out, g.err
}

func score(v float64) *float64 { return &v }

func TestGenerate_PersistsOutput(t *testing.T) {
	summary := "kiosks"
	projects := &mocks.ProjectRepository{}
	projects.On("Get", mock.Anything, "p1").Return(&model.Project{ID: "p1", OwnerID: "f1", Title: "Solar", Summary: &summary}, nil)
	projects.On("UpdateAIOutput", mock.Anything, "p1", mock.MatchedBy(func(o repository.AIOutput) bool {
		return o.SuccessScore != nil && *o.SuccessScore == 81
	})).Return(&model.Project{ID: "p1", Title: "Solar", SuccessScore: score(81), Plan: json.RawMessage(`{}`)}, nil)

	gen := &stubGenerator{out: &GenerateResponse{Plan: json.RawMessage(`{}`), SuccessScore: score(81)}}
	svc := NewService(projects, gen, zap.NewNop())

	got, err := svc.Generate(context.Background(), "f1", "founder", "p1")
	require.NoError(t, err)
	assert.Equal(t, 81.0, *got.SuccessScore)
	assert.Equal(t, []GenerateRequest{{Title: "Solar", Summary: "kiosks"}}, gen.seen)
	projects.AssertExpectations(t)
}

func TestGenerate_AccessAndFailures(t *testing.T) {
	projects := &mocks.ProjectRepository{}
	projects.On("Get", mock.Anything, "p1").Return(&model.Project{ID: "p1", OwnerID: "f1", Title: "Solar"}, nil)
	projects.On("Get", mock.Anything, "gone").Return(nil, repository.ErrNotFound)

	failing := &stubGenerator{err: errors.New("connection refused")}
	svc := NewService(projects, failing, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Generate(ctx, "someone", "founder", "p1")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Generate(ctx, "f1", "founder", "gone")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.Generate(ctx, "admin-1", "admin", "p1")
	assert.ErrorIs(t, err, ErrUpstream)
	projects.AssertNotCalled(t, "UpdateAIOutput", mock.Anything, mock.Anything, mock.Anything)
}

func TestExplain_DoesNotPersist(t *testing.T) {
	projects := &mocks.ProjectRepository{}
	projects.On("Get", mock.Anything, "p1").Return(&model.Project{ID: "p1", OwnerID: "f1", Title: "Solar"}, nil)
	gen := &stubGenerator{out: &GenerateResponse{SuccessScore: score(64), Explain: json.RawMessage(`"market is small"`)}}

	svc := NewService(projects, gen, zap.NewNop())
	got, err := svc.Explain(context.Background(), "f1", "founder", "p1")
	require.NoError(t, err)
	assert.Equal(t, 64.0, *got.SuccessScore)
	assert.JSONEq(t, `"market is small"`, string(got.Explain))
	projects.AssertNotCalled(t, "UpdateAIOutput", mock.Anything, mock.Anything, mock.Anything)
}
