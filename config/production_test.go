package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, Name: "collab", User: "postgres", Password: "secret"},
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			RequestTimeout: time.Second,
		},
		JWT: JWTConfig{
			SecretKey:      "0123456789abcdef0123456789abcdef",
			AccessTokenTTL: time.Hour,
			Issuer:         "collab-market",
			Audience:       "collab-market-api",
		},
		Logging:   LoggingConfig{Level: "info"},
		Cache:     CacheConfig{Enabled: true, Provider: "redis", RedisURL: "redis://localhost:6379"},
		Events:    EventsConfig{Provider: "log"},
		Matching:  MatchingConfig{DefaultLimit: 20, MaxLimit: 100, CampaignLockTTL: time.Second},
		Scheduler: SchedulerConfig{RelayEnabled: true, RelayInterval: time.Second},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProductionConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*ProductionConfig) {}},
		{
			name:    "missing database password",
			mutate:  func(c *ProductionConfig) { c.Database.Password = "" },
			wantErr: "DB_PASSWORD is required",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *ProductionConfig) { c.JWT.SecretKey = "short" },
			wantErr: "JWT_SECRET_KEY must be at least 32 characters long",
		},
		{
			name: "rsa keys skip secret length",
			mutate: func(c *ProductionConfig) {
				c.JWT.SecretKey = ""
				c.JWT.UseRSAKeys = true
				c.JWT.PrivateKey = "private"
				c.JWT.PublicKey = "public"
			},
		},
		{
			name: "kafka without brokers",
			mutate: func(c *ProductionConfig) {
				c.Events.Provider = "kafka"
				c.Events.KafkaBrokers = nil
				c.Events.NotificationTopic = "topic"
			},
			wantErr: "KAFKA_BROKERS is required",
		},
		{
			name:    "unknown events provider",
			mutate:  func(c *ProductionConfig) { c.Events.Provider = "sqs" },
			wantErr: "EVENTS_PROVIDER must be one of",
		},
		{
			name:    "default limit above max",
			mutate:  func(c *ProductionConfig) { c.Matching.DefaultLimit = 500 },
			wantErr: "MATCH_DEFAULT_LIMIT must not exceed MATCH_MAX_LIMIT",
		},
		{
			name:    "bad log level",
			mutate:  func(c *ProductionConfig) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateProductionConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("COLLAB_TEST_INT", "42")
	t.Setenv("COLLAB_TEST_BAD_INT", "forty-two")
	t.Setenv("COLLAB_TEST_DURATION", "90s")
	t.Setenv("COLLAB_TEST_SLICE", " a, b ,,c ")

	assert.Equal(t, 42, getEnvInt("COLLAB_TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("COLLAB_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, getEnvDuration("COLLAB_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, getEnvStringSlice("COLLAB_TEST_SLICE", nil))
	assert.Equal(t, "fallback", getEnvString("COLLAB_TEST_UNSET", "fallback"))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "# comment\nCOLLAB_ENV_QUOTED=\"quoted value\"\nCOLLAB_ENV_PRESET=from-file\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("COLLAB_ENV_PRESET", "from-env")
	t.Setenv("COLLAB_ENV_QUOTED", "")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "quoted value", os.Getenv("COLLAB_ENV_QUOTED"))
	assert.Equal(t, "from-env", os.Getenv("COLLAB_ENV_PRESET"))

	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
