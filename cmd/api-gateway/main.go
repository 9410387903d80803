package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/campus-admin-api/api/swagger"
	"github.com/campushq/campus-admin-api/internal/handler"
	"github.com/campushq/campus-admin-api/internal/middleware"
	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/internal/repository"
	"github.com/campushq/campus-admin-api/internal/service"
	"github.com/campushq/campus-admin-api/pkg/config"
	"github.com/campushq/campus-admin-api/pkg/jobs"
	"github.com/campushq/campus-admin-api/pkg/logger"
	corsmiddleware "github.com/campushq/campus-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/campus-admin-api/pkg/middleware/requestid"
)

// @title Campus Admin API
// @version 1.0.0
// @description Institutional administration and session analytics service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := buildDatabase(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	cacheSvc := buildCache(cfg, metricsSvc, logr)

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	jobPostingRepo := repository.NewJobPostingRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	// Services.
	authSvc := service.NewAuthService(userRepo, cfg.JWT, logr)
	sessionSvc := service.NewSessionService(sessionRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, sessionRepo, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, sessionRepo, logr)
	quizSvc := service.NewQuizService(quizRepo, sessionRepo, logr)
	ratingSvc := service.NewRatingService(ratingRepo, cacheSvc, cfg.Analysis.RatingQuestion, cfg.Analysis.CacheTTL, logr)

	narrativeSvc := buildNarrative(cfg, logr, metricsSvc)
	sheet := buildSheetAppender(ctx, cfg, logr)
	analysisSvc := service.NewAnalysisService(analysisRepo, narrativeSvc, sheet, cacheSvc, metricsSvc, cfg.Analysis, logr)

	evaluationSvc := service.NewEvaluationService(evaluationRepo, logr)
	jobPostingSvc := service.NewJobPostingService(jobPostingRepo, logr)

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, logr, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerConcurrency,
		MaxRetries: cfg.Notifications.WorkerRetries,
	})
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	exportSvc, err := buildExports(ctx, cfg, analysisSvc, evaluationSvc, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)
	quizHandler := handler.NewQuizHandler(quizSvc)
	ratingHandler := handler.NewRatingHandler(ratingSvc)
	analysisHandler := handler.NewAnalysisHandler(analysisSvc, exportSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	jobPostingHandler := handler.NewJobPostingHandler(jobPostingSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc, exportSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, authSvc,
		authHandler, sessionHandler, attendanceHandler, feedbackHandler, quizHandler,
		ratingHandler, analysisHandler, notificationHandler, jobPostingHandler,
		evaluationHandler, exportHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerRoutes(r *gin.Engine, cfg *config.Config, authSvc *service.AuthService,
	auth *handler.AuthHandler,
	sessions *handler.SessionHandler,
	attendance *handler.AttendanceHandler,
	feedback *handler.FeedbackHandler,
	quizzes *handler.QuizHandler,
	ratings *handler.RatingHandler,
	analysis *handler.AnalysisHandler,
	notifications *handler.NotificationHandler,
	jobPostings *handler.JobPostingHandler,
	evaluations *handler.EvaluationHandler,
	exports *handler.ExportHandler,
) {
	api := r.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/refresh", auth.Refresh)
		authGroup.GET("/me", middleware.JWT(authSvc), auth.Me)
	}

	// Signed token downloads carry their own credential.
	api.GET("/exports/download", exports.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)

	sessionGroup := protected.Group("/sessions")
	{
		sessionGroup.POST("", staff, sessions.Create)
		sessionGroup.GET("", sessions.List)
		sessionGroup.GET("/:id", sessions.Get)
		sessionGroup.PATCH("/:id", staff, sessions.Update)
		sessionGroup.DELETE("/:id", admin, sessions.Delete)

		sessionGroup.POST("/:id/attendance", staff, attendance.BulkUpsert)
		sessionGroup.GET("/:id/attendance", staff, attendance.ListBySession)

		sessionGroup.POST("/:id/feedback", middleware.RequireRoles(models.RoleStudent), feedback.Submit)
		sessionGroup.GET("/:id/feedback", staff, feedback.ListBySession)

		sessionGroup.POST("/:id/quiz-scores", staff, quizzes.BulkUpsert)
		sessionGroup.GET("/:id/quiz-scores", staff, quizzes.ListBySession)
		sessionGroup.GET("/:id/quiz-distribution", staff, quizzes.Distribution)
	}

	studentGroup := protected.Group("/students")
	{
		studentGroup.GET("/:id/attendance-summary", middleware.RBAC("ADMIN", "FACULTY", "SELF"), attendance.StudentSummary)
		studentGroup.GET("/:id/evaluations", middleware.RBAC("ADMIN", "FACULTY", "SELF"), evaluations.ListByStudent)
	}

	protected.GET("/faculty/:id/ratings-heatmap", staff, ratings.Heatmap)

	analysisGroup := protected.Group("/analysis")
	{
		analysisGroup.POST("/feedback/:batchId", admin, analysis.Run)
		analysisGroup.GET("/analytics", admin, analysis.Analytics)
		analysisGroup.GET("/export", admin, analysis.Export)
	}

	notificationGroup := protected.Group("/notifications")
	{
		notificationGroup.POST("", admin, notifications.Create)
		notificationGroup.GET("", notifications.ListMine)
		notificationGroup.POST("/:id/read", notifications.MarkRead)
	}

	jobPostingGroup := protected.Group("/job-postings")
	{
		jobPostingGroup.POST("", admin, jobPostings.Create)
		jobPostingGroup.GET("", jobPostings.List)
		jobPostingGroup.GET("/:id", jobPostings.Get)
		jobPostingGroup.PATCH("/:id", admin, jobPostings.Update)
		jobPostingGroup.DELETE("/:id", admin, jobPostings.Delete)
	}

	evaluationGroup := protected.Group("/evaluations")
	{
		evaluationGroup.POST("", staff, evaluations.Upsert)
		evaluationGroup.GET("/report", staff, evaluations.Report)
		evaluationGroup.GET("/export", staff, evaluations.Export)
	}
}
