package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("testdata-missing.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "TelelBirds", cfg.Site.Name)
	assert.Equal(t, "support@telelbirds.com", cfg.Site.SupportEmail)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "media", cfg.Storage.MediaRoot)
	assert.Equal(t, "static", cfg.Storage.StaticRoot)
	assert.Equal(t, "0 20 * * *", cfg.Reporting.CronSchedule)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadTrustedProxies(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, 127.0.0.1 ,,")

	cfg, err := Load("testdata-missing.env")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TIMEZONE", "UTC")

	_, err := Load("testdata-missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsBadInteger(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_PORT", "twenty-five")

	_, err := Load("testdata-missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PORT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Database:  DatabaseConfig{DSN: "postgres://localhost/test"},
			Auth:      AuthConfig{JWTSecret: "0123456789abcdef", TokenTTL: time.Hour},
			Site:      SiteConfig{Name: "TelelBirds", SupportEmail: "support@telelbirds.com"},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 16"},
		{"mailchimp half configured", func(c *Config) { c.Mailchimp.APIKey = "key-us6" }, "MAILCHIMP"},
		{"whatsapp without phone id", func(c *Config) { c.WhatsApp.AccessToken = "token" }, "WHATSAPP_PHONE_NUMBER_ID"},
		{"sheets half configured", func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, "GOOGLE_SHEETS"},
		{"bad cron", func(c *Config) { c.Reporting.CronSchedule = "every day" }, "REPORT_CRON_SCHEDULE"},
		{"bad timezone", func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "DATABASE_URL"},
		{"bad proxy", func(c *Config) { c.Server.TrustedProxies = []string{"lb.internal"} }, "TRUSTED_PROXIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
