package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Analysis      AnalysisConfig
	Narrative     NarrativeConfig
	Sheets        SheetsConfig
	Notifications NotificationsConfig
	Exports       ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalysisConfig tunes the session analytics pipeline.
type AnalysisConfig struct {
	Enabled        bool
	CacheTTL       time.Duration
	SessionLimit   int
	RowLimit       int
	Timezone       string
	RatingQuestion string
}

// NarrativeConfig configures the generative summary client.
type NarrativeConfig struct {
	Enabled     bool
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// SheetsConfig configures the audit spreadsheet append.
type SheetsConfig struct {
	Enabled         bool
	CredentialsFile string
	SpreadsheetID   string
	Range           string
}

// NotificationsConfig tunes background delivery workers.
type NotificationsConfig struct {
	Enabled           bool
	WorkerConcurrency int
	WorkerRetries     int
}

// ExportsConfig controls rendered report storage & signed downloads.
type ExportsConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Analysis = AnalysisConfig{
		Enabled:        v.GetBool("ENABLE_ANALYSIS"),
		CacheTTL:       parseDuration(v.GetString("ANALYSIS_CACHE_TTL"), 10*time.Minute),
		SessionLimit:   v.GetInt("ANALYSIS_SESSION_LIMIT"),
		RowLimit:       v.GetInt("ANALYSIS_ROW_LIMIT"),
		Timezone:       v.GetString("ANALYSIS_TIMEZONE"),
		RatingQuestion: v.GetString("ANALYSIS_RATING_QUESTION"),
	}

	cfg.Narrative = NarrativeConfig{
		Enabled:     v.GetBool("ENABLE_NARRATIVE"),
		APIKey:      v.GetString("NARRATIVE_API_KEY"),
		BaseURL:     v.GetString("NARRATIVE_BASE_URL"),
		Model:       v.GetString("NARRATIVE_MODEL"),
		MaxTokens:   v.GetInt("NARRATIVE_MAX_TOKENS"),
		Temperature: v.GetFloat64("NARRATIVE_TEMPERATURE"),
		Timeout:     parseDuration(v.GetString("NARRATIVE_TIMEOUT"), 30*time.Second),
	}

	cfg.Sheets = SheetsConfig{
		Enabled:         v.GetBool("ENABLE_SHEETS_AUDIT"),
		CredentialsFile: v.GetString("SHEETS_CREDENTIALS_FILE"),
		SpreadsheetID:   v.GetString("SHEETS_SPREADSHEET_ID"),
		Range:           v.GetString("SHEETS_RANGE"),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:           v.GetBool("ENABLE_NOTIFICATIONS"),
		WorkerConcurrency: v.GetInt("NOTIFICATIONS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("NOTIFICATIONS_WORKER_RETRIES"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:         v.GetBool("ENABLE_EXPORTS"),
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ANALYSIS", true)
	v.SetDefault("ANALYSIS_CACHE_TTL", "10m")
	v.SetDefault("ANALYSIS_SESSION_LIMIT", 1000)
	v.SetDefault("ANALYSIS_ROW_LIMIT", 10000)
	v.SetDefault("ANALYSIS_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("ANALYSIS_RATING_QUESTION", "overall_rating")

	v.SetDefault("ENABLE_NARRATIVE", false)
	v.SetDefault("NARRATIVE_API_KEY", "")
	v.SetDefault("NARRATIVE_BASE_URL", "")
	v.SetDefault("NARRATIVE_MODEL", "gpt-4o-mini")
	v.SetDefault("NARRATIVE_MAX_TOKENS", 256)
	v.SetDefault("NARRATIVE_TEMPERATURE", 0.2)
	v.SetDefault("NARRATIVE_TIMEOUT", "30s")

	v.SetDefault("ENABLE_SHEETS_AUDIT", false)
	v.SetDefault("SHEETS_CREDENTIALS_FILE", "")
	v.SetDefault("SHEETS_SPREADSHEET_ID", "")
	v.SetDefault("SHEETS_RANGE", "SessionAnalytics!A:P")

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
	v.SetDefault("NOTIFICATIONS_WORKER_CONCURRENCY", 2)
	v.SetDefault("NOTIFICATIONS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
