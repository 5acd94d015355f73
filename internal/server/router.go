package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/parolegy/parolegy-backend/internal/handlers"
	"github.com/parolegy/parolegy-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	UserHandler       *handlers.UserHandler
	SSEHandler        *handlers.SSEHandler
	CaseHandler       *handlers.CaseHandler
	AssessmentHandler *handlers.AssessmentHandler
	DocumentHandler   *handlers.DocumentHandler
	CampaignHandler   *handlers.CampaignHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.SSEStream)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PUT("/user/avatar", cfg.UserHandler.UpdateAvatar)
	// Cases
	protected.POST("/cases", cfg.CaseHandler.CreateCase)
	protected.GET("/cases", cfg.CaseHandler.ListCases)
	protected.GET("/cases/:caseID", cfg.CaseHandler.GetCase)
	// Assessment
	protected.PUT("/cases/:caseID/assessment", cfg.AssessmentHandler.SaveAssessment)
	protected.GET("/cases/:caseID/assessment", cfg.AssessmentHandler.GetAssessment)
	// Documents
	protected.POST("/cases/:caseID/documents", cfg.DocumentHandler.UploadDocument)
	protected.GET("/cases/:caseID/documents", cfg.DocumentHandler.ListDocuments)
	protected.GET("/documents/:documentID/download", cfg.DocumentHandler.DownloadDocument)
	protected.DELETE("/documents/:documentID", cfg.DocumentHandler.DeleteDocument)
	// Campaigns
	protected.POST("/cases/:caseID/campaigns", cfg.CampaignHandler.GenerateCampaign)
	protected.GET("/cases/:caseID/campaigns", cfg.CampaignHandler.ListCampaigns)
	protected.GET("/cases/:caseID/campaigns/run", cfg.CampaignHandler.GetLatestRun)
	protected.GET("/campaigns/:campaignID", cfg.CampaignHandler.GetCampaign)
	protected.GET("/campaigns/:campaignID/pdf", cfg.CampaignHandler.DownloadPDF)
	protected.POST("/campaigns/:campaignID/sections/:sectionName/improve", cfg.CampaignHandler.ImproveSection)

	return router
}
