package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/service/message"
)

type MessageHandler struct {
	messages *message.Service
	logger   *zap.Logger
}

func NewMessageHandler(messages *message.Service, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

type createMessageRequest struct {
	ProjectID   string   `json:"projectId" binding:"required"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments"`
}

// Create handles POST /messages
func (h *MessageHandler) Create(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	m, err := h.messages.Create(c.Request.Context(), caller(c), message.CreateInput{
		ProjectID:   req.ProjectID,
		Body:        req.Body,
		Attachments: req.Attachments,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListByProject handles GET /messages/by-project/:projectId
func (h *MessageHandler) ListByProject(c *gin.Context) {
	msgs, err := h.messages.ListByProject(c.Request.Context(), caller(c), c.Param("projectId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Search handles GET /messages/search
func (h *MessageHandler) Search(c *gin.Context) {
	in := message.SearchInput{
		ProjectID:      c.Query("projectId"),
		Query:          c.Query("q"),
		HasAttachments: c.Query("hasAttachments") == "true",
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		in.Limit = &v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		in.Offset = v
	}

	var ok bool
	if in.From, ok = parseTime(c, "from"); !ok {
		return
	}
	if in.To, ok = parseTime(c, "to"); !ok {
		return
	}

	msgs, err := h.messages.Search(c.Request.Context(), caller(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func caller(c *gin.Context) message.Caller {
	return message.Caller{UserID: userID(c), Role: Role(c)}
}

// parseTime reads an optional RFC 3339 (or date-only) query value, answering 400 when malformed.
func parseTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": gin.H{key: "must be an RFC 3339 timestamp"}})
	return nil, false
}
