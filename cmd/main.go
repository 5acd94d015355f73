package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/parolegy/parolegy-backend/internal/db"
	"github.com/parolegy/parolegy-backend/internal/handlers"
	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/middleware"
	"github.com/parolegy/parolegy-backend/internal/repos"
	"github.com/parolegy/parolegy-backend/internal/server"
	"github.com/parolegy/parolegy-backend/internal/services"
	"github.com/parolegy/parolegy-backend/internal/sse"
	"github.com/parolegy/parolegy-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	caseRepo := repos.NewCaseRepo(thePG, log)
	assessmentRepo := repos.NewAssessmentRepo(thePG, log)
	documentRepo := repos.NewDocumentRepo(thePG, log)
	campaignRepo := repos.NewCampaignRepo(thePG, log)
	campaignRunRepo := repos.NewCampaignGenerationRunRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	avatarService, err := services.NewAvatarService(log, bucketService)
	if err != nil {
		log.Warn("Could not init AvatarService; avatars disabled", "error", err)
		avatarService = nil
	}
	documentPolicy, err := services.NewDocumentPolicy(log)
	if err != nil {
		log.Error("Could not load document policy", "error", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(log)
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, avatarService, sseHub)
	caseService := services.NewCaseService(thePG, log, caseRepo)
	assessmentService := services.NewAssessmentService(thePG, log, caseRepo, assessmentRepo, userRepo, emailService)
	documentService := services.NewDocumentService(thePG, log, caseRepo, documentRepo, bucketService, documentPolicy)
	campaignService := services.NewCampaignService(thePG, log, caseRepo, campaignRepo, campaignRunRepo, bucketService, openaiClient)
	campaignGenService := services.NewCampaignGenerationService(
		thePG,
		log,
		sseHub,
		caseRepo,
		assessmentRepo,
		documentRepo,
		campaignRepo,
		campaignRunRepo,
		userRepo,
		bucketService,
		openaiClient,
		emailService,
		documentPolicy,
	)
	campaignGenService.StartWorker(context.Background())

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(log, userService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)
	caseHandler := handlers.NewCaseHandler(log, caseService)
	assessmentHandler := handlers.NewAssessmentHandler(log, assessmentService)
	documentHandler := handlers.NewDocumentHandler(log, documentService)
	campaignHandler := handlers.NewCampaignHandler(log, campaignService, campaignGenService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		UserHandler:       userHandler,
		SSEHandler:        sseHandler,
		CaseHandler:       caseHandler,
		AssessmentHandler: assessmentHandler,
		DocumentHandler:   documentHandler,
		CampaignHandler:   campaignHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
