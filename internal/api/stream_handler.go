package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/realtime"
	"dealroom/pkg/util"
)

// StreamHandler serves the server-sent event fallback. The credential comes from ?token=
// because EventSource cannot set headers.
type StreamHandler struct {
	registry  *realtime.Registry
	authz     realtime.Authorizer
	jwtSecret string
	logger    *zap.Logger
}

func NewStreamHandler(registry *realtime.Registry, authz realtime.Authorizer, jwtSecret string, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{registry: registry, authz: authz, jwtSecret: jwtSecret, logger: logger}
}

// Stream handles GET /messages/stream/:projectId?token=
func (h *StreamHandler) Stream(c *gin.Context) {
	claims, err := util.ParseJWT(c.Query("token"), h.jwtSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	projectID := c.Param("projectId")
	if err := h.authz.Authorize(c.Request.Context(), claims.UserID, claims.Role, projectID); err != nil {
		writeError(c, h.logger, err)
		c.Abort()
		return
	}
	h.registry.ServeStream(c, projectID)
}
