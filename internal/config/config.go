package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	OAuth2Google OAuth2GoogleConfig
	Storage      StorageConfig
	FaceMatch    FaceMatchConfig
	Firebase     FirebaseConfig
	SMTP         SMTPConfig
	Notification NotificationConfig
	Salary       SalaryConfig
	RateLimit    RateLimitConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Version     string
	Timezone    string
	FrontendURL string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
	CookieName       string
	CookieSecure     bool
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// StorageConfig selects the blob store used for face and document uploads.
type StorageConfig struct {
	Type            string // local | gcs
	BasePath        string
	BaseURL         string
	GCSBucket       string
	GCSCredentials  string
	SignedURLExpiry time.Duration
}

type FaceMatchConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type FirebaseConfig struct {
	Enabled         bool
	ProjectID       string
	CredentialsFile string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type NotificationConfig struct {
	WorkerCount int
	QueueSize   int
	DueBatch    int
	SweepEvery  time.Duration
	ExpireEvery time.Duration
}

type SalaryConfig struct {
	FallbackHourlyRate float64
}

type RateLimitConfig struct {
	AuthPerMinute int
	AuthBurst     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hrm"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns:    int32(getEnvInt("DB_MIN_CONNS", 5)),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Version:     getEnv("APP_VERSION", "v1.0.0"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		CookieName:       getEnv("JWT_COOKIE_NAME", "jwt"),
		CookieSecure:     getEnvBool("JWT_COOKIE_SECURE", false),
	}

	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES", []string{"openid", "email", "profile"}),
	}

	config.Storage = StorageConfig{
		Type:            getEnv("STORAGE_TYPE", "local"),
		BasePath:        getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:         getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		GCSBucket:       getEnv("GCS_BUCKET", ""),
		GCSCredentials:  getEnv("GCS_CREDENTIALS_FILE", ""),
		SignedURLExpiry: getEnvDuration("STORAGE_SIGNED_URL_EXPIRY", 24*time.Hour),
	}

	config.FaceMatch = FaceMatchConfig{
		URL:     getEnv("FACE_MATCH_URL", "http://localhost:5000/verify"),
		APIKey:  getEnv("FACE_MATCH_API_KEY", ""),
		Timeout: getEnvDuration("FACE_MATCH_TIMEOUT", 15*time.Second),
	}

	config.Firebase = FirebaseConfig{
		Enabled:         getEnvBool("FIREBASE_ENABLED", false),
		ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnvInt("SMTP_PORT", 587),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@hrm.local"),
		FromName: getEnv("SMTP_FROM_NAME", "HRM"),
	}

	config.Notification = NotificationConfig{
		WorkerCount: getEnvInt("NOTIFICATION_WORKERS", 2),
		QueueSize:   getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000),
		DueBatch:    getEnvInt("NOTIFICATION_DUE_BATCH", 100),
		SweepEvery:  getEnvDuration("NOTIFICATION_SWEEP_INTERVAL", time.Minute),
		ExpireEvery: getEnvDuration("NOTIFICATION_EXPIRE_INTERVAL", 24*time.Hour),
	}

	fallbackRate, err := strconv.ParseFloat(getEnv("SALARY_FALLBACK_HOURLY_RATE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SALARY_FALLBACK_HOURLY_RATE: %w", err)
	}
	config.Salary = SalaryConfig{FallbackHourlyRate: fallbackRate}

	config.RateLimit = RateLimitConfig{
		AuthPerMinute: getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 20),
		AuthBurst:     getEnvInt("RATE_LIMIT_AUTH_BURST", 5),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	switch c.Storage.Type {
	case "local":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_TYPE=gcs")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.Firebase.Enabled && c.Firebase.CredentialsFile == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required when FIREBASE_ENABLED=true")
	}
	if c.Salary.FallbackHourlyRate < 0 {
		return fmt.Errorf("SALARY_FALLBACK_HOURLY_RATE must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the timezone used to derive attendance work-dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
