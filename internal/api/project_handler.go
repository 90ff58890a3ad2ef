package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/service/ai"
	"dealroom/internal/service/project"
)

type ProjectHandler struct {
	projects *project.Service
	scoring  *ai.Service
	logger   *zap.Logger
}

func NewProjectHandler(projects *project.Service, scoring *ai.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, scoring: scoring, logger: logger}
}

type createProjectRequest struct {
	Title        string  `json:"title" binding:"required,min=3"`
	Summary      *string `json:"summary"`
	Problem      *string `json:"problem"`
	Solution     *string `json:"solution"`
	TargetMarket *string `json:"targetMarket"`
}

type visibilityRequest struct {
	Visibility string `json:"visibility" binding:"required,oneof=private investor_preview"`
}

type scoreRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.ListOwn(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	p, err := h.projects.Create(c.Request.Context(), userID(c), project.CreateInput{
		Title:        req.Title,
		Summary:      req.Summary,
		Problem:      req.Problem,
		Solution:     req.Solution,
		TargetMarket: req.TargetMarket,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.projects.GetOwn(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// LockBaseline handles PATCH /projects/:id/lock-baseline
func (h *ProjectHandler) LockBaseline(c *gin.Context) {
	p, err := h.projects.LockBaseline(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SetVisibility handles PATCH /projects/:id/visibility
func (h *ProjectHandler) SetVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	p, err := h.projects.SetVisibility(c.Request.Context(), userID(c), c.Param("id"), req.Visibility)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Milestones handles GET /milestones/by-project/:projectId
func (h *ProjectHandler) Milestones(c *gin.Context) {
	milestones, err := h.projects.Milestones(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, milestones)
}

// Score handles POST /ai/plan-budget-roadmap
func (h *ProjectHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	out, err := h.scoring.Generate(c.Request.Context(), userID(c), Role(c), req.ProjectID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Explain handles GET /ai/explain/:projectId
func (h *ProjectHandler) Explain(c *gin.Context) {
	out, err := h.scoring.Explain(c.Request.Context(), userID(c), Role(c), c.Param("projectId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
