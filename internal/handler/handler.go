package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"rar-studio/internal/repository"
	"rar-studio/internal/service/conversation"
	"rar-studio/internal/service/outbound"
	"rar-studio/internal/service/scheduler"
	"rar-studio/internal/service/studio"
	"rar-studio/internal/service/usage"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	repo         *repository.Repository
	studio       *studio.Service
	meter        *usage.Meter
	queue        *outbound.Queue
	orchestrator *conversation.Orchestrator
	scheduler    *scheduler.Scheduler
}

// NewHandlers creates new HTTP handlers
func NewHandlers(repo *repository.Repository, studioSvc *studio.Service, meter *usage.Meter, queue *outbound.Queue, orchestrator *conversation.Orchestrator, sched *scheduler.Scheduler) *Handlers {
	return &Handlers{
		repo:         repo,
		studio:       studioSvc,
		meter:        meter,
		queue:        queue,
		orchestrator: orchestrator,
		scheduler:    sched,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/f/:slug", h.ViewFunnel)

	api := router.Group("/api")
	{
		api.GET("/limits", h.GetLimits)
		api.POST("/limits", h.UpdateLimits)
		api.GET("/usage", h.GetUsage)

		api.GET("/integrations", h.GetIntegrations)
		api.POST("/integrations", h.UpdateIntegrations)

		api.POST("/outbound/queue", h.QueueOutbound)
		api.POST("/outbound/run", h.RunOutbound)
		api.GET("/outbound", h.ListOutbound)

		api.GET("/profile", h.GetProfile)
		api.POST("/profile", h.UpdateProfile)

		api.GET("/leads", h.ListLeads)
		api.POST("/leads", h.CreateLead)
		api.DELETE("/leads/:id", h.DeleteLead)
		api.GET("/convo/:lead_id", h.GetConversation)
		api.POST("/funnel/move", h.MoveStage)
		api.POST("/salesperson/chat", h.Chat)

		api.POST("/tools/marketing-pack", h.MarketingPack)
		api.POST("/tools/sales-playbook", h.SalesPlaybook)
		api.POST("/tools/sales-replies", h.SalesReplies)
		api.POST("/funnels", h.BuildFunnel)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once", h.RunOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		OK:        true,
		Dialect:   h.repo.Dialect(),
		DB:        true,
		Scheduler: "stopped",
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.repo.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		response.OK = false
		response.DB = false
		logrus.Errorf("Database health check failed: %v", err)
	}

	if h.scheduler.IsRunning() {
		response.Scheduler = "running"
	}

	statusCode := http.StatusOK
	if !response.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
