package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	b, err := getEnvBool("TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	b, err = getEnvBool("TEST_BOOL_NOT_SET", true)
	require.NoError(t, err)
	assert.True(t, b)

	t.Setenv("TEST_BOOL", "maybe")
	_, err = getEnvBool("TEST_BOOL", false)
	assert.Error(t, err)
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

// clearEnv unsets every variable Load reads, restoring them after the test
func clearEnv(t *testing.T) {
	keys := []string{
		"TRANSPORT", "TELEGRAM_BOT_TOKEN", "WHATSAPP_LISTEN_ADDR",
		"ADMIN_PHONE", "PHONE_COUNTRY_CODE", "PHONE_LOCAL_DIGITS", "REJECT_UNAUTHORIZED", "TIMEZONE",
		"DIRECTORY_BACKEND", "ADMIN_SHEET_ID", "USER_TEMPLATE_SHEET_ID", "GOOGLE_CREDENTIALS_FILE",
		"LEDGER_SHARE", "LEDGER_DASHBOARD", "SHEETS_RATE_PER_SEC", "SHEETS_BURST",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_PHONE", "+51999999999")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ADMIN_SHEET_ID", "sheet")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TransportTelegram, cfg.Transport)
	assert.Equal(t, BackendSheets, cfg.DirectoryBackend)
	assert.Equal(t, "51", cfg.PhoneCountryCode)
	assert.Equal(t, 9, cfg.PhoneLocalDigits)
	assert.False(t, cfg.RejectUnauthorized)
	assert.Equal(t, "America/Lima", cfg.Location.String())
	assert.True(t, cfg.Sheets.ShareLedger)
	assert.True(t, cfg.Sheets.LedgerDashboard)
	assert.Equal(t, 1.0, cfg.Sheets.RatePerSecond)
	assert.Equal(t, 5, cfg.Sheets.Burst)
	assert.Equal(t, ":8080", cfg.WhatsApp.ListenAddr)
}

func TestLoad_WhatsAppWithPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_PHONE", "+51999999999")
	t.Setenv("TRANSPORT", "WhatsApp")
	t.Setenv("DIRECTORY_BACKEND", "postgres")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("REJECT_UNAUTHORIZED", "true")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TransportWhatsApp, cfg.Transport)
	assert.Equal(t, BackendPostgres, cfg.DirectoryBackend)
	assert.True(t, cfg.RejectUnauthorized)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing admin phone",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "ADMIN_SHEET_ID": "s"},
		},
		{
			name: "missing telegram token",
			env:  map[string]string{"ADMIN_PHONE": "1", "ADMIN_SHEET_ID": "s"},
		},
		{
			name: "missing admin sheet",
			env:  map[string]string{"ADMIN_PHONE": "1", "TELEGRAM_BOT_TOKEN": "t"},
		},
		{
			name: "missing db password",
			env:  map[string]string{"ADMIN_PHONE": "1", "TELEGRAM_BOT_TOKEN": "t", "DIRECTORY_BACKEND": "postgres"},
		},
		{
			name: "unknown transport",
			env:  map[string]string{"ADMIN_PHONE": "1", "TRANSPORT": "sms", "ADMIN_SHEET_ID": "s"},
		},
		{
			name: "bad timezone",
			env:  map[string]string{"ADMIN_PHONE": "1", "TELEGRAM_BOT_TOKEN": "t", "ADMIN_SHEET_ID": "s", "TIMEZONE": "Nowhere/City"},
		},
		{
			name: "bad digits",
			env:  map[string]string{"ADMIN_PHONE": "1", "TELEGRAM_BOT_TOKEN": "t", "ADMIN_SHEET_ID": "s", "PHONE_LOCAL_DIGITS": "nine"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
