// Package server exposes the services over HTTP with gin.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/app"
	"github.com/agenthands/automationvault/internal/auth"
)

type Server struct {
	app *app.App
	log *zap.Logger
}

func NewServer(a *app.App) *Server {
	return &Server{app: a, log: a.Log}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(
		Recovery(s.log),
		RequestID(),
		RequestLogger(s.log),
		CORS(s.app.Config.Server.CORS),
		Metrics(),
	)

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireUser := auth.RequireUser(s.app.Verifier, s.log)

	api := r.Group("/api")
	{
		api.GET("/automations", s.ListAutomations)
		api.GET("/automations/categories", s.Categories)
		api.GET("/automations/:id", s.GetAutomation)
		api.POST("/automations", requireUser, s.IngestAutomation)
		api.POST("/automations/:id/download", requireUser, s.Download)

		api.GET("/downloads", requireUser, s.ListDownloads)
		api.GET("/dashboard", requireUser, s.Dashboard)
		api.GET("/profile", requireUser, s.GetProfile)
		api.PATCH("/profile", requireUser, s.UpdateProfile)

		api.POST("/workflows/generate", requireUser, s.GenerateWorkflow)
		api.POST("/workflows/analyze", requireUser, s.AnalyzeWorkflow)

		api.POST("/chat", requireUser, s.Chat)
		api.GET("/chat/greeting", requireUser, s.Greeting)

		api.POST("/checkout", auth.OptionalUser(s.app.Verifier), s.CreateCheckout)
		api.POST("/checkout/verify", s.VerifyPayment)
	}

	return r
}
