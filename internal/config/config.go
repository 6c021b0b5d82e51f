package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is the default path for the application database.
const DefaultDatabasePath = "./bibliotheque.db"

type (
	Config struct {
		HTTP
		Database
		Global
		Auth
		SMTP
		Notify
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Auth struct {
		// JWTSecret signs bearer tokens. Auto-generated at startup when
		// empty, which invalidates outstanding tokens on restart.
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Notify struct {
		Enabled  bool
		Schedule string // cron format: "0 8 * * *" = daily at 08:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 4100)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "")       // Auto-generated if empty
	v.SetDefault("token_expiry", "24h")  // Matches the frontend's session length
	v.SetDefault("bcrypt_cost", 10)

	// SMTP defaults
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_from", "")

	// Overdue notification defaults
	v.SetDefault("notify_enabled", false)
	v.SetDefault("notify_schedule", "0 8 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Auth: Auth{
			JWTSecret:   v.GetString("JWT_SECRET"),
			TokenExpiry: v.GetDuration("TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("BCRYPT_COST"),
		},
		SMTP: SMTP{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Notify: Notify{
			Enabled:  v.GetBool("NOTIFY_ENABLED"),
			Schedule: v.GetString("NOTIFY_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
