package database

import (
	"fmt"

	"github.com/school-system/promotion/internal/config"
	"github.com/school-system/promotion/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	log.Info("connecting to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dsn", maskPassword(cfg.Database.DSN)))

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	default:
		dialector = postgres.Open(cfg.Database.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection successful")
	return db, nil
}

func maskPassword(dsn string) string {
	if len(dsn) > 20 {
		return dsn[:20] + "...***..."
	}
	return "***"
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running migrations")

	err := db.AutoMigrate(
		&models.Class{},
		&models.Student{},
		&models.Subject{},
		&models.Exam{},
		&models.Mark{},
		&models.PromotionLog{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_students_class_roll ON students(class_name, roll)",
		"CREATE INDEX IF NOT EXISTS idx_marks_exam ON marks(exam_id)",
		"CREATE INDEX IF NOT EXISTS idx_promotion_logs_class ON promotion_logs(from_class, created_at)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			// mysql has no IF NOT EXISTS for indexes
			log.Warn("index creation skipped", zap.String("stmt", stmt), zap.Error(err))
		}
	}

	return nil
}
