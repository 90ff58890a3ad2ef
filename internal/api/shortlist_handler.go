package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/service/shortlist"
)

type ShortlistHandler struct {
	shortlists *shortlist.Service
	logger     *zap.Logger
}

func NewShortlistHandler(shortlists *shortlist.Service, logger *zap.Logger) *ShortlistHandler {
	return &ShortlistHandler{shortlists: shortlists, logger: logger}
}

type inviteRequest struct {
	ExpertID string  `json:"expertId" binding:"required,uuid"`
	Reason   *string `json:"reason"`
}

type respondInviteRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted declined hired"`
}

// Invite handles POST /shortlist/projects/:projectId/invite
func (h *ShortlistHandler) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	sl, err := h.shortlists.Invite(c.Request.Context(), userID(c), c.Param("projectId"), req.ExpertID, req.Reason)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sl)
}

// Respond handles PATCH /shortlist/shortlists/:id
func (h *ShortlistHandler) Respond(c *gin.Context) {
	var req respondInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	sl, err := h.shortlists.Respond(c.Request.Context(), userID(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sl)
}

// Mine handles GET /experts/me/shortlists
func (h *ShortlistHandler) Mine(c *gin.Context) {
	rows, err := h.shortlists.Mine(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
