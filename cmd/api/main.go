package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/school-system/promotion/internal/config"
	"github.com/school-system/promotion/internal/database"
	"github.com/school-system/promotion/internal/handlers"
	"github.com/school-system/promotion/internal/logging"
	"github.com/school-system/promotion/internal/middleware"
	"github.com/school-system/promotion/internal/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title Student Promotion API
// @version 1.0
// @description Year end result processing and class promotion for school administrators
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if len(os.Args) > 1 {
		handleCommand(os.Args[1], db, logger)
		return
	}

	if cfg.Server.Env == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.Origins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "school-promotion-api"})
	})

	if cfg.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Services
	store := database.NewStore(db)
	auditService := services.NewAuditService(store, logger)
	promotionService := services.NewPromotionService(store, auditService, logger, cfg.Promotion.DefaultPassMarks)
	resultService := services.NewResultService(store, cfg.Promotion.DefaultPassMarks)
	subjectService := services.NewSubjectService(db)

	// Handlers
	promotionHandler := handlers.NewPromotionHandler(promotionService, cfg.Promotion.LogPageLimit)
	resultHandler := handlers.NewResultHandler(db, resultService, auditService)
	auditHandler := handlers.NewAuditHandler(auditService)
	classHandler := handlers.NewClassHandler(db)
	studentHandler := handlers.NewStudentHandler(db)
	subjectHandler := handlers.NewSubjectHandler(db, subjectService)
	examHandler := handlers.NewExamHandler(db)

	v1 := r.Group("/api/v1")
	{
		promotions := v1.Group("/promotions")
		{
			promotions.POST("/preview", promotionHandler.Preview)
			promotions.POST("/commit", promotionHandler.Commit)
			promotions.GET("/logs", promotionHandler.Logs)
		}

		v1.GET("/results/tabulation", resultHandler.Tabulation)
		v1.POST("/marks", resultHandler.UpsertMarks)

		v1.GET("/classes", classHandler.List)
		v1.POST("/classes", classHandler.Create)
		v1.GET("/classes/:id", classHandler.Get)
		v1.PUT("/classes/:id", classHandler.Update)
		v1.DELETE("/classes/:id", classHandler.Delete)
		v1.GET("/classes/:id/students", classHandler.GetStudents)

		v1.GET("/students", studentHandler.List)
		v1.POST("/students", studentHandler.Create)
		v1.GET("/students/:id", studentHandler.Get)
		v1.PUT("/students/:id", studentHandler.Update)
		v1.DELETE("/students/:id", studentHandler.Delete)

		v1.GET("/subjects", subjectHandler.List)
		v1.POST("/subjects", subjectHandler.Create)
		v1.POST("/subjects/seed", subjectHandler.SeedDefaults)
		v1.PUT("/subjects/:id", subjectHandler.Update)
		v1.DELETE("/subjects/:id", subjectHandler.Delete)

		v1.GET("/exams", examHandler.List)
		v1.POST("/exams", examHandler.Create)
		v1.GET("/exams/:id", examHandler.Get)
		v1.DELETE("/exams/:id", examHandler.Delete)

		v1.GET("/audit/recent", auditHandler.GetRecentActivity)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
	if err := r.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func handleCommand(cmd string, db *gorm.DB, logger *zap.Logger) {
	switch cmd {
	case "migrate":
		if err := database.Migrate(db, logger); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		logger.Info("migration completed")

	case "seed-subjects":
		subjectService := services.NewSubjectService(db)
		classNames, err := subjectService.GetAllClassNames()
		if err != nil {
			logger.Fatal("failed to list classes", zap.Error(err))
		}
		created, err := subjectService.SeedDefaultSubjects(classNames)
		if err != nil {
			logger.Fatal("failed to seed subjects", zap.Error(err))
		}
		logger.Info("seeded default subjects", zap.Int("created", created), zap.Int("classes", len(classNames)))

	default:
		logger.Error("unknown command", zap.String("command", cmd))
		os.Exit(2)
	}
}
