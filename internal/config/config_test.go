package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Timezone: "UTC"},
		Database: DatabaseConfig{Password: "secret"},
		JWT:      JWTConfig{Secret: "jwt-secret", AccessExpiration: "1h"},
		Storage:  StorageConfig{Type: "local"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "DB_PASSWORD"},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "JWT_SECRET_KEY"},
		{name: "bad access expiration", mutate: func(c *Config) { c.JWT.AccessExpiration = "soon" }, wantErr: "JWT_ACCESS_EXPIRATION_TIME"},
		{name: "bad timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }, wantErr: "APP_TIMEZONE"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Storage.Type = "gcs" }, wantErr: "GCS_BUCKET"},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "minio" }, wantErr: "STORAGE_TYPE"},
		{name: "firebase without credentials", mutate: func(c *Config) { c.Firebase.Enabled = true }, wantErr: "FIREBASE_CREDENTIALS_FILE"},
		{name: "negative fallback rate", mutate: func(c *Config) { c.Salary.FallbackHourlyRate = -1 }, wantErr: "SALARY_FALLBACK_HOURLY_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "hrm")
	t.Setenv("DB_SSL_MODE", "disable")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORAGE_TYPE", "local")
	t.Setenv("FIREBASE_ENABLED", "false")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("FACE_MATCH_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SALARY_FALLBACK_HOURLY_RATE", "42.5")
	t.Setenv("NOTIFICATION_DUE_BATCH", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 3*time.Second, cfg.FaceMatch.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, 42.5, cfg.Salary.FallbackHourlyRate)
	assert.Equal(t, 25, cfg.Notification.DueBatch)
	assert.Equal(t, 1000, cfg.Notification.QueueSize)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/hrm?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("APP_PORT", "eighty")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
}
