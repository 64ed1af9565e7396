package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB    *gorm.DB
	Redis *redis.Client
	App   *AppConfig
)

// AppConfig holds process-level configuration. Company-profile values that
// staff edit at runtime live in the settings table instead, so they survive
// restarts and are shared across instances.
type AppConfig struct {
	Host string
	Port int

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	JWTSecret string

	// Generative document-analysis service.
	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration

	// Transactional email provider.
	EmailBaseURL string
	EmailAPIKey  string
	EmailFrom    string

	// Document store: GCS bucket in production, local dir in dev.
	UseGCS    bool
	GCSBucket string
	UploadDir string

	// Identity recorded on rows created by automated flows.
	ServiceUserEmail string
}

// Load reads .env and environment variables into App.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system environment variables")
	}

	v := viper.New()
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 8080)
	v.SetDefault("AI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_TIMEOUT_SECONDS", 60)
	v.SetDefault("EMAIL_FROM", "obras@odeplac.mx")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("SERVICE_USER_EMAIL", "system@odeplac.mx")
	v.AutomaticEnv()

	cfg := &AppConfig{
		Host:             v.GetString("HOST"),
		Port:             v.GetInt("PORT"),
		DatabaseDSN:      v.GetString("DB_DSN"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		AIBaseURL:        v.GetString("AI_BASE_URL"),
		AIAPIKey:         v.GetString("AI_API_KEY"),
		AIModel:          v.GetString("AI_MODEL"),
		AITimeout:        time.Duration(v.GetInt("AI_TIMEOUT_SECONDS")) * time.Second,
		EmailBaseURL:     v.GetString("EMAIL_BASE_URL"),
		EmailAPIKey:      v.GetString("EMAIL_API_KEY"),
		EmailFrom:        v.GetString("EMAIL_FROM"),
		UseGCS:           v.GetString("USE_GCS") == "true",
		GCSBucket:        v.GetString("GCS_BUCKET"),
		UploadDir:        v.GetString("UPLOAD_DIR"),
		ServiceUserEmail: v.GetString("SERVICE_USER_EMAIL"),
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	App = cfg
	log.Info("config parsed")
	return cfg, nil
}

// Connect opens the database and, when configured, redis.
func Connect() {
	if App == nil {
		if _, err := Load(); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	var err error
	DB, err = gorm.Open(postgres.Open(App.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if App.RedisAddr != "" {
		Redis = redis.NewClient(&redis.Options{
			Addr:        App.RedisAddr,
			Password:    App.RedisPassword,
			DialTimeout: 10 * time.Second,
			ReadTimeout: 10 * time.Second,
		})
		if err := Redis.Ping(context.Background()).Err(); err != nil {
			log.Warnf("redis unreachable, material context cache disabled: %v", err)
			Redis = nil
		}
	}
}
