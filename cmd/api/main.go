package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/whrcat/cpplearn-api/internal/config"
	"github.com/whrcat/cpplearn-api/internal/database"
	"github.com/whrcat/cpplearn-api/internal/handler"
	"github.com/whrcat/cpplearn-api/internal/middleware"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
	"github.com/whrcat/cpplearn-api/internal/router"
	"github.com/whrcat/cpplearn-api/internal/service"
	cloud "github.com/whrcat/cpplearn-api/pkg/cloudinary"
	"github.com/whrcat/cpplearn-api/pkg/coze"
	"github.com/whrcat/cpplearn-api/pkg/review"
	"github.com/whrcat/cpplearn-api/pkg/sandbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.CodeSubmission{},
		&models.CapabilityProfile{},
		&models.Interview{},
		&models.InterviewMessage{},
		&models.KnowledgeArticle{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	reviewClient, err := coze.New(coze.Config{
		BaseURL:         cfg.CozeBaseURL,
		APIKey:          cfg.CozeAPIKey,
		BotID:           cfg.CozeReviewBotID,
		PollInterval:    cfg.CozePollInterval,
		PollMaxAttempts: cfg.CozePollMaxAttempts,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("failed to create review chat client: %v", err)
	}

	interviewClient, err := coze.New(coze.Config{
		BaseURL:         cfg.CozeBaseURL,
		APIKey:          cfg.CozeAPIKey,
		BotID:           cfg.CozeInterviewBotID,
		PollInterval:    cfg.CozePollInterval,
		PollMaxAttempts: cfg.CozePollMaxAttempts,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("failed to create interview chat client: %v", err)
	}

	executor, err := sandbox.NewDockerExecutor(sandbox.Config{
		Host:          cfg.DockerHost,
		Timeout:       cfg.ExecutionTimeout,
		MemoryLimitMB: int64(cfg.CodeRunMemoryMB),
		CPUShares:     int64(cfg.CodeRunCPUShares),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create sandbox executor: %v", err)
	}
	defer executor.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewCodeSubmissionRepository(db)
	capabilityRepo := repository.NewCapabilityRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)
	knowledgeRepo := repository.NewKnowledgeRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	problemService := service.NewProblemService(problemRepo, validate, logger)
	capabilityService := service.NewCapabilityService(capabilityRepo, logger)
	submissionService := service.NewCodeSubmissionService(
		submissionRepo,
		problemRepo,
		review.NewOrchestrator(reviewClient, logger),
		capabilityService,
		validate,
		logger,
	)
	codeRunService := service.NewCodeRunService(executor, validate, logger, service.CodeRunConfig{
		ExecutionTimeout: cfg.ExecutionTimeout,
		MemoryLimitMB:    cfg.CodeRunMemoryMB,
		CPUShares:        cfg.CodeRunCPUShares,
	})
	dashboardService := service.NewDashboardService(submissionRepo, capabilityService, redisClient, cfg.DashboardCacheTTL, logger)
	interviewService := service.NewInterviewService(interviewRepo, interviewClient, validate, logger)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, validate, logger)
	uploadService := service.NewUploadService(uploader, cfg.AvatarMaxSizeMB, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:           handler.NewAuthHandler(authService, logger),
		ProblemHandler:        handler.NewProblemHandler(problemService, logger),
		CodeSubmissionHandler: handler.NewCodeSubmissionHandler(submissionService, logger),
		CodeRunHandler:        handler.NewCodeRunHandler(codeRunService, logger),
		CapabilityHandler:     handler.NewCapabilityHandler(capabilityService, logger),
		DashboardHandler:      handler.NewDashboardHandler(dashboardService, logger),
		InterviewHandler:      handler.NewInterviewHandler(interviewService, logger),
		KnowledgeHandler:      handler.NewKnowledgeHandler(knowledgeService, logger),
		UploadHandler:         handler.NewUploadHandler(uploadService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
