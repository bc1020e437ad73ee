package main

import (
	"context"
	"log"
	"time"

	"github.com/school-system/promotion/internal/config"
	"github.com/school-system/promotion/internal/database"
	"github.com/school-system/promotion/internal/logging"
	"go.uber.org/zap"
)

// cleanup prunes audit entries older than AUDIT_RETENTION_DAYS.
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

	if cfg.Logging.AuditRetentionDays <= 0 {
		logger.Info("audit retention disabled, nothing to do")
		return
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -cfg.Logging.AuditRetentionDays)
	deleted, err := database.NewStore(db).PruneAuditLogs(ctx, cutoff)
	if err != nil {
		logger.Fatal("audit cleanup failed", zap.Error(err))
	}

	logger.Info("audit cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff))
}
