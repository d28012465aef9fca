package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportTelegram = "telegram"
	TransportWhatsApp = "whatsapp"

	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Transport string
	Telegram  TelegramConfig
	WhatsApp  WhatsAppConfig

	AdminPhone         string
	PhoneCountryCode   string
	PhoneLocalDigits   int
	RejectUnauthorized bool
	Location           *time.Location

	DirectoryBackend string
	Sheets           SheetsConfig
	Database         DatabaseConfig
}

// TelegramConfig holds Telegram transport settings
type TelegramConfig struct {
	Token string
}

// WhatsAppConfig holds the webhook listener settings
type WhatsAppConfig struct {
	ListenAddr string
}

// SheetsConfig holds Google Sheets and Drive settings
type SheetsConfig struct {
	AdminSheetID    string
	TemplateSheetID string
	CredentialsFile string
	ShareLedger     bool
	LedgerDashboard bool
	RatePerSecond   float64
	Burst           int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		Transport: strings.ToLower(getEnv("TRANSPORT", TransportTelegram)),
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		WhatsApp: WhatsAppConfig{
			ListenAddr: getEnv("WHATSAPP_LISTEN_ADDR", ":8080"),
		},
		AdminPhone:       os.Getenv("ADMIN_PHONE"),
		PhoneCountryCode: getEnv("PHONE_COUNTRY_CODE", "51"),
		DirectoryBackend: strings.ToLower(getEnv("DIRECTORY_BACKEND", BackendSheets)),
		Sheets: SheetsConfig{
			AdminSheetID:    os.Getenv("ADMIN_SHEET_ID"),
			TemplateSheetID: os.Getenv("USER_TEMPLATE_SHEET_ID"),
			CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ledgerbot"),
			User:     getEnv("DB_USER", "ledgerbot"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}

	var err error
	if cfg.PhoneLocalDigits, err = getEnvInt("PHONE_LOCAL_DIGITS", 9); err != nil {
		return nil, err
	}
	if cfg.RejectUnauthorized, err = getEnvBool("REJECT_UNAUTHORIZED", false); err != nil {
		return nil, err
	}
	if cfg.Sheets.ShareLedger, err = getEnvBool("LEDGER_SHARE", true); err != nil {
		return nil, err
	}
	if cfg.Sheets.LedgerDashboard, err = getEnvBool("LEDGER_DASHBOARD", true); err != nil {
		return nil, err
	}
	if cfg.Sheets.RatePerSecond, err = getEnvFloat("SHEETS_RATE_PER_SEC", 1); err != nil {
		return nil, err
	}
	if cfg.Sheets.Burst, err = getEnvInt("SHEETS_BURST", 5); err != nil {
		return nil, err
	}

	tz := getEnv("TIMEZONE", "America/Lima")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AdminPhone == "" {
		return fmt.Errorf("ADMIN_PHONE is required")
	}

	switch c.Transport {
	case TransportTelegram:
		if c.Telegram.Token == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
		}
	case TransportWhatsApp:
	default:
		return fmt.Errorf("unknown TRANSPORT %q", c.Transport)
	}

	switch c.DirectoryBackend {
	case BackendSheets:
		if c.Sheets.AdminSheetID == "" {
			return fmt.Errorf("ADMIN_SHEET_ID is required")
		}
	case BackendPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("unknown DIRECTORY_BACKEND %q", c.DirectoryBackend)
	}
	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
