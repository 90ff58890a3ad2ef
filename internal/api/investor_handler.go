package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/service/access"
)

type InvestorHandler struct {
	access *access.Service
	logger *zap.Logger
}

func NewInvestorHandler(svc *access.Service, logger *zap.Logger) *InvestorHandler {
	return &InvestorHandler{access: svc, logger: logger}
}

type accessRequestBody struct {
	ProjectID string `json:"projectId" binding:"required"`
}

// Discovery handles GET /investor/discovery
func (h *InvestorHandler) Discovery(c *gin.Context) {
	projects, err := h.access.Discovery(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Dealroom handles GET /investor/projects/:id
func (h *InvestorHandler) Dealroom(c *gin.Context) {
	d, err := h.access.Dealroom(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// RequestAccess handles POST /investor/access-requests.
// 201 when a request was created, 200 when the existing one is echoed back.
func (h *InvestorHandler) RequestAccess(c *gin.Context) {
	var body accessRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}

	req, created, err := h.access.RequestAccess(c.Request.Context(), userID(c), body.ProjectID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, req)
}

// ListMine handles GET /investor/access-requests
func (h *InvestorHandler) ListMine(c *gin.Context) {
	reqs, err := h.access.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}
