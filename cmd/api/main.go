package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sge-escolar/escola-api/api/swagger"
	"github.com/sge-escolar/escola-api/internal/handler"
	"github.com/sge-escolar/escola-api/internal/middleware"
	"github.com/sge-escolar/escola-api/internal/repository"
	"github.com/sge-escolar/escola-api/internal/service"
	"github.com/sge-escolar/escola-api/pkg/cache"
	"github.com/sge-escolar/escola-api/pkg/config"
	"github.com/sge-escolar/escola-api/pkg/database"
	"github.com/sge-escolar/escola-api/pkg/export"
	"github.com/sge-escolar/escola-api/pkg/logger"
	corsmiddleware "github.com/sge-escolar/escola-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sge-escolar/escola-api/pkg/middleware/requestid"
)

// @title Escola API
// @version 1.0.0
// @description School management core: grades, attendance, billing and report cards
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, financial summaries will not be cached", zap.Error(err))
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Finance.SummaryCacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Finance.SummaryCacheTTL, logr, cfg.Finance.CacheEnabled)
	}

	userRepo := repository.NewUserRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewTeachingAssignmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	contractRepo := repository.NewContractRepository(db)
	billingRepo := repository.NewBillingRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, periodRepo, assignmentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, assignmentRepo, validate, logr)
	billingSvc := service.NewBillingService(billingRepo, contractRepo, cacheSvc, metrics, validate, logr, cfg.Billing.DefaultMonths)
	reportSvc := service.NewReportService(enrollmentRepo, subjectRepo, gradeRepo, attendanceSvc, periodRepo, logr)

	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter(cfg.School.Name, cfg.School.City)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.RouterDeps{
		Auth:        handler.NewAuthHandler(authSvc),
		Grades:      handler.NewGradeHandler(gradeSvc),
		Attendance:  handler.NewAttendanceHandler(attendanceSvc, csvExporter),
		Billing:     handler.NewBillingHandler(billingSvc, csvExporter, pdfExporter),
		Reports:     handler.NewReportHandler(reportSvc, pdfExporter),
		AuthService: authSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
