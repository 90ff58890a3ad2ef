// Package httpserver assembles the gin engine: middleware, health checks and routes.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dealroom/internal/api"
	"dealroom/pkg/otel"
	"dealroom/pkg/rbac"
)

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

type Handlers struct {
	Auth       *api.AuthHandler
	Project    *api.ProjectHandler
	Investor   *api.InvestorHandler
	Admin      *api.AdminHandler
	Message    *api.MessageHandler
	Task       *api.TaskHandler
	Stream     *api.StreamHandler
	Sourcing   *api.SourcingHandler
	Shortlist  *api.ShortlistHandler
	Onboarding *api.OnboardingHandler
	// WS serves the socket endpoint; it authenticates on its own.
	WS http.Handler
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, jwtSecret string, ready map[string]ReadyCheck, log *zap.Logger) *Router {
	api.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), otel.GinMiddleware(), MetricsMiddleware(), RequestLogger(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true, "service": "backend"}) })
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.HEAD("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", readyz(ready))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)

	// token travels in the query string for these two
	r.GET("/messages/stream/:projectId", h.Stream.Stream)
	r.GET("/ws", gin.WrapH(h.WS))

	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/projects", h.Project.List)
		auth.POST("/projects", RequirePermission(rbac.PermissionManageProjects), h.Project.Create)
		auth.GET("/projects/:id", h.Project.Get)
		auth.PATCH("/projects/:id/lock-baseline", h.Project.LockBaseline)
		auth.PATCH("/projects/:id/visibility", h.Project.SetVisibility)

		auth.POST("/ai/plan-budget-roadmap", RequirePermission(rbac.PermissionScoreProjects), h.Project.Score)
		auth.GET("/ai/explain/:projectId", RequirePermission(rbac.PermissionScoreProjects), h.Project.Explain)

		auth.GET("/milestones/by-project/:projectId", h.Project.Milestones)
		auth.GET("/tasks/my", h.Task.ListMine)
		auth.PATCH("/tasks/:id", RequirePermission(rbac.PermissionUpdateTasks), h.Task.Update)
		auth.GET("/notifications", h.Task.Notifications)

		auth.POST("/messages", RequirePermission(rbac.PermissionSendMessages), h.Message.Create)
		auth.GET("/messages/by-project/:projectId", h.Message.ListByProject)
		auth.GET("/messages/search", h.Message.Search)

		auth.GET("/suppliers/search", h.Sourcing.Search)
		auth.GET("/suppliers/suggest/:projectId", h.Sourcing.Suggest)
		auth.POST("/quotes/projects/:projectId/rfq", RequirePermission(rbac.PermissionRequestQuotes), h.Sourcing.RequestQuotes)
		auth.GET("/quotes/by-project/:projectId", h.Sourcing.ListQuotes)
		auth.POST("/quotes/:id/submit", h.Sourcing.Submit)
		auth.PATCH("/quotes/:id", h.Sourcing.SetStatus)

		auth.POST("/shortlist/projects/:projectId/invite", RequirePermission(rbac.PermissionInviteExperts), h.Shortlist.Invite)
		auth.PATCH("/shortlist/shortlists/:id", RequirePermission(rbac.PermissionRespondInvites), h.Shortlist.Respond)
		auth.GET("/experts/me/shortlists", h.Shortlist.Mine)

		auth.GET("/onboarding/state", h.Onboarding.State)
		auth.POST("/onboarding/complete", h.Onboarding.Complete)
	}

	investor := auth.Group("/investor", RequireRole(rbac.RoleInvestor))
	{
		investor.GET("/discovery", h.Investor.Discovery)
		investor.GET("/projects/:id", RequirePermission(rbac.PermissionViewDealroom), h.Investor.Dealroom)
		investor.POST("/access-requests", RequirePermission(rbac.PermissionRequestAccess), h.Investor.RequestAccess)
		investor.GET("/access-requests", h.Investor.ListMine)
	}

	admin := auth.Group("/admin", RequireRole(rbac.RoleAdmin))
	{
		admin.GET("/thresholds", h.Admin.GetThreshold)
		admin.PATCH("/thresholds", RequirePermission(rbac.PermissionManageThresholds), h.Admin.SetThreshold)
		admin.GET("/access-requests", h.Admin.ListAccessRequests)
		admin.PATCH("/access-requests/:id", RequirePermission(rbac.PermissionReviewAccess), h.Admin.SetAccessStatus)
		admin.GET("/outbox/events", RequirePermission(rbac.PermissionReplayOutbox), h.Admin.ListOutboxEvents)
		admin.POST("/outbox/replay", RequirePermission(rbac.PermissionReplayOutbox), h.Admin.ReplayOutboxEvent)
		admin.POST("/outbox/replay-failed", RequirePermission(rbac.PermissionReplayOutbox), h.Admin.ReplayFailedEvents)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return &Router{Engine: r}
}

func readyz(checks map[string]ReadyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for name, check := range checks {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
