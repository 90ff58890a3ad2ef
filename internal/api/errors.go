package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"dealroom/internal/realtime"
	"dealroom/internal/service/access"
	"dealroom/internal/service/ai"
	"dealroom/internal/service/auth"
	"dealroom/internal/service/message"
	"dealroom/internal/service/onboarding"
	"dealroom/internal/service/project"
	"dealroom/internal/service/shortlist"
	"dealroom/internal/service/sourcing"
	"dealroom/internal/service/task"
	"dealroom/pkg/logger"
	"dealroom/pkg/outbox"
)

type errorMapping struct {
	err     error
	status  int
	message string // empty means err.Error()
}

var errorTable = []errorMapping{
	{access.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
	{project.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
	{ai.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
	{message.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
	{realtime.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
	{access.ErrRequestNotFound, http.StatusNotFound, "Access request not found"},
	{task.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
	{outbox.ErrEventNotFound, http.StatusNotFound, "Event not found"},
	{sourcing.ErrProjectNotOwned, http.StatusNotFound, ""},
	{sourcing.ErrQuoteNotFound, http.StatusNotFound, "Quote not found"},
	{sourcing.ErrSupplierNotFound, http.StatusNotFound, "Supplier not found"},
	{shortlist.ErrProjectNotOwned, http.StatusNotFound, ""},
	{shortlist.ErrShortlistNotFound, http.StatusNotFound, "Not found"},
	{shortlist.ErrExpertNotFound, http.StatusNotFound, "Expert not found"},
	{onboarding.ErrUserNotFound, http.StatusNotFound, "User not found"},

	{access.ErrNotApproved, http.StatusForbidden, "Not approved"},
	{task.ErrNotYourTask, http.StatusForbidden, "Not your task"},
	{project.ErrNotOwner, http.StatusForbidden, "Forbidden"},
	{ai.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{shortlist.ErrNotYourInvite, http.StatusForbidden, ""},
	{realtime.ErrForbidden, http.StatusForbidden, "Forbidden"},

	{access.ErrInvalidStatus, http.StatusBadRequest, ""},
	{message.ErrInvalidInput, http.StatusBadRequest, ""},
	{message.ErrProjectRequired, http.StatusBadRequest, ""},
	{project.ErrTitleTooShort, http.StatusBadRequest, ""},
	{project.ErrInvalidVisibility, http.StatusBadRequest, ""},
	{task.ErrInvalidStatus, http.StatusBadRequest, ""},
	{task.ErrInvalidHours, http.StatusBadRequest, ""},
	{auth.ErrInvalidRole, http.StatusBadRequest, ""},
	{sourcing.ErrInvalidRFQ, http.StatusBadRequest, ""},
	{sourcing.ErrInvalidOffer, http.StatusBadRequest, ""},
	{sourcing.ErrInvalidStatus, http.StatusBadRequest, ""},
	{shortlist.ErrInvalidStatus, http.StatusBadRequest, ""},
	{onboarding.ErrNameRequired, http.StatusBadRequest, ""},
	{onboarding.ErrCategoryRequired, http.StatusBadRequest, ""},
	{onboarding.ErrFocusRequired, http.StatusBadRequest, ""},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{auth.ErrEmailTaken, http.StatusConflict, "Email already registered"},
	{ai.ErrUpstream, http.StatusBadGateway, ""},
}

// writeError maps service errors to a status and a short reason. Unknown errors are logged and become 500.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			c.JSON(m.status, gin.H{"error": msg})
			return
		}
	}

	logger.WithTrace(c.Request.Context(), log).Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// writeBindError answers 400 with per-field validation failures when available.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email"
	case "min":
		if k := fe.Kind(); k == reflect.Slice || k == reflect.Array {
			return "must contain at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "uuid":
		return "must be a uuid"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", "|")
	default:
		return "failed " + fe.Tag()
	}
}

var registerOnce sync.Once

// UseJSONFieldNames makes validation errors report json tag names instead of Go field names.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}
