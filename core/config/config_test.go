package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc", AdminID: 42},
		Database: DatabaseConfig{Name: "boardbooster", User: "boardbooster"},
		Catalog: CatalogConfig{Subjects: []SubjectConfig{
			{Code: "Physics"},
			{Code: "maths", Title: "Maths"},
		}},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.Equal(t, "data/files", cfg.Storage.Dir)

	// codes are lowercased, missing titles derived from the code
	assert.Equal(t, "physics", cfg.Catalog.Subjects[0].Code)
	assert.Equal(t, "Physics", cfg.Catalog.Subjects[0].Title)
	assert.Equal(t, "Maths", cfg.Catalog.Subjects[1].Title)
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeWebhookRequiresEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	assert.Error(t, Normalize(cfg))

	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	assert.NoError(t, Normalize(cfg))
}

func TestNormalizeRejectsBadSubjects(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.Subjects = nil
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Catalog.Subjects = []SubjectConfig{{Code: "phy sics"}}
	assert.Error(t, Normalize(cfg), "reserved characters in code")

	cfg = validConfig()
	cfg.Catalog.Subjects = []SubjectConfig{{Code: "maths"}, {Code: "Maths"}}
	assert.Error(t, Normalize(cfg), "duplicate after lowering")

	cfg = validConfig()
	cfg.Catalog.Subjects = []SubjectConfig{{Code: "verylongsubjectcode"}}
	assert.Error(t, Normalize(cfg), "code too long for callback payloads")
}

func TestNormalizeRequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Telegram.AdminID = 0
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Database.Name = ""
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []string{"callback", "message"}, cfg.RateLimit.ExcludeUpdates)

	cfg = validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	assert.Error(t, Normalize(cfg))
}
