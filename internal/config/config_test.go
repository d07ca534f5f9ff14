// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Auth.DevTokens)
	assert.Equal(t, 50, cfg.Upkeep.CheckWorkBudget)
	assert.Equal(t, 30*time.Second, cfg.Upkeep.Timeout())
	assert.Equal(t, models.MustHexToAddress("0x00000000000000000000000000000000000000a1"), cfg.Chain.Operator())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("SERVER_ALLOW_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_ENABLED", "TRUE")
	t.Setenv("AUTH_DEV_TOKENS", "true")
	t.Setenv("UPKEEP_PERFORM_BUDGET", "7")
	t.Setenv("UPKEEP_PERFORM_TIMEOUT", "0")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CHAIN_STUDENT_CAP", "not-a-number")
	t.Setenv("UPKEEP_OWNER_ADDRESS", "0x00000000000000000000000000000000000000f0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowOrigins)
	assert.True(t, cfg.Database.Enabled)
	assert.True(t, cfg.Auth.DevTokens)
	assert.Equal(t, 7, cfg.Upkeep.PerformWorkBudget)
	assert.Equal(t, time.Duration(0), cfg.Upkeep.Timeout())
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.Chain.StudentCap)
	assert.Equal(t, models.MustHexToAddress("0x00000000000000000000000000000000000000f0"), cfg.Upkeep.Owner())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"default secret in production", map[string]string{"ENVIRONMENT": "production"}},
		{"missing db password in production", map[string]string{
			"ENVIRONMENT": "production", "JWT_SECRET": "s3cret", "DB_ENABLED": "true",
		}},
		{"dev tokens in production", map[string]string{
			"ENVIRONMENT": "production", "JWT_SECRET": "s3cret", "AUTH_DEV_TOKENS": "true",
		}},
		{"zero operator", map[string]string{"CHAIN_OPERATOR_ADDRESS": "0x0000000000000000000000000000000000000000"}},
		{"malformed owner", map[string]string{"UPKEEP_OWNER_ADDRESS": "0x1234"}},
		{"zero check budget", map[string]string{"UPKEEP_CHECK_BUDGET": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
