package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Promotion  PromotionConfig
	CORS       CORSConfig
	Logging    LoggingConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	DSN      string
}

type PromotionConfig struct {
	DefaultPassMarks int
	LogPageLimit     int
}

type CORSConfig struct {
	Origins []string
}

type LoggingConfig struct {
	Level              string
	AuditRetentionDays int
}

type MonitoringConfig struct {
	PrometheusEnabled bool
}

func Load() (*Config, error) {
	godotenv.Load()

	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	defaultPort := "5432"
	if driver == "mysql" {
		defaultPort = "3306"
	}

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", defaultPort)
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "")
	dbName := getEnv("DB_NAME", "school_promotion")

	dsn := getEnv("DATABASE_URL", "")
	if dsn == "" {
		switch driver {
		case "mysql":
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				dbUser, dbPass, dbHost, dbPort, dbName)
		case "postgres":
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				dbHost, dbPort, dbUser, dbPass, dbName)
		default:
			return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   driver,
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPass,
			Name:     dbName,
			DSN:      dsn,
		},
		Promotion: PromotionConfig{
			DefaultPassMarks: getEnvInt("DEFAULT_PASS_MARKS", 33),
			LogPageLimit:     getEnvInt("PROMOTION_LOG_LIMIT", 50),
		},
		CORS: CORSConfig{
			Origins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		},
		Logging: LoggingConfig{
			Level:              getEnv("LOG_LEVEL", "info"),
			AuditRetentionDays: getEnvInt("AUDIT_RETENTION_DAYS", 365),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getEnv("PROMETHEUS_ENABLED", "true") == "true",
		},
	}

	if cfg.Promotion.DefaultPassMarks < 0 || cfg.Promotion.DefaultPassMarks > 100 {
		return nil, fmt.Errorf("DEFAULT_PASS_MARKS must be between 0 and 100, got %d", cfg.Promotion.DefaultPassMarks)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
