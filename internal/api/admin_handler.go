package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/service/access"
	"dealroom/pkg/outbox"
)

type AdminHandler struct {
	access           *access.Service
	replayService    *outbox.ReplayService
	defaultThreshold float64
	logger           *zap.Logger
}

func NewAdminHandler(svc *access.Service, replayService *outbox.ReplayService, defaultThreshold float64, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		access:           svc,
		replayService:    replayService,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

type statusBody struct {
	Status *string `json:"status"`
}

// json.Number accepts 75 and "75" but not "abc".
type thresholdBody struct {
	InvestorScoreThreshold *json.Number `json:"investorScoreThreshold"`
}

// ListAccessRequests handles GET /admin/access-requests?status=
// No status parameter lists pending requests; "all" or an empty value lists everything.
func (h *AdminHandler) ListAccessRequests(c *gin.Context) {
	status, present := c.GetQuery("status")
	switch {
	case !present:
		status = model.AccessRequested
	case status == "all":
		status = ""
	}

	reqs, err := h.access.ListForReview(c.Request.Context(), status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// SetAccessStatus handles PATCH /admin/access-requests/:id. A missing status approves.
func (h *AdminHandler) SetAccessStatus(c *gin.Context) {
	var body statusBody
	if err := bindOptionalJSON(c, &body); err != nil {
		writeBindError(c, err)
		return
	}
	status := model.AccessApproved
	if body.Status != nil {
		status = *body.Status
	}

	req, err := h.access.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetThreshold handles GET /admin/thresholds
func (h *AdminHandler) GetThreshold(c *gin.Context) {
	v, err := h.access.Threshold(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investorScoreThreshold": v})
}

// SetThreshold handles PATCH /admin/thresholds
func (h *AdminHandler) SetThreshold(c *gin.Context) {
	var body thresholdBody
	if err := bindOptionalJSON(c, &body); err != nil {
		writeBindError(c, err)
		return
	}

	value := h.defaultThreshold
	if body.InvestorScoreThreshold != nil {
		v, err := body.InvestorScoreThreshold.Float64()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "investorScoreThreshold must be numeric"})
			return
		}
		value = v
	}

	if err := h.access.SetThreshold(c.Request.Context(), value); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investorScoreThreshold": value})
}

// ListOutboxEvents handles GET /admin/outbox/events?status=&limit=
func (h *AdminHandler) ListOutboxEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.replayService.ListEvents(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ReplayOutboxEvent handles POST /admin/outbox/replay?id=xxx
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id parameter"})
		return
	}
	eventID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	if err := h.replayService.ReplayEvent(c.Request.Context(), eventID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "replayed", "event_id": eventID})
}

// ReplayFailedEvents handles POST /admin/outbox/replay-failed?limit=100
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	n, err := h.replayService.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed", "success_count": n, "limit": limit})
}
