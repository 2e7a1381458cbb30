package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth and secrets
	JWTSecret     string
	EncryptionKey string

	// Summary and advisor
	SummaryTimeout   time.Duration
	GeminiAPIKey     string
	GeminiModel      string
	AdvisorCacheTTL  time.Duration
	AdvisorCacheSize int

	// Google Sheets snapshot export
	GoogleSpreadsheetID      string
	GoogleSnapshotSheet      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Invoice reminders
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SenderEmail       string
	ReminderSchedule  string
	ReminderLeadDays  int
	ReminderFrequency string
}

var (
	validBackends    = []string{"memory", "sqlite"}
	validFrequencies = []string{"daily", "weekly"}
	validLogFormats  = []string{"text", "json"}
)

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledgerly.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledgerly"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_snapshots"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		SummaryTimeout:   getEnvDuration("SUMMARY_TIMEOUT", 5*time.Second),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AdvisorCacheTTL:  getEnvDuration("ADVISOR_CACHE_TTL", 10*time.Minute),
		AdvisorCacheSize: getEnvInt("ADVISOR_CACHE_SIZE", 256),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSnapshotSheet:      getEnv("GOOGLE_SNAPSHOT_SHEET", "Snapshots"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", ""),
		ReminderSchedule:  getEnv("REMINDER_SCHEDULE", "0 9 * * *"),
		ReminderLeadDays:  getEnvInt("REMINDER_LEAD_DAYS", 3),
		ReminderFrequency: getEnv("REMINDER_FREQUENCY", "daily"),
	}
}

// Validate checks the settings shared by every binary and returns all
// problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validLogFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.EncryptionKey != "" && len(c.EncryptionKey) < 16 {
		errs = append(errs, "ENCRYPTION_KEY must be at least 16 characters")
	}

	if c.SummaryTimeout < 100*time.Millisecond || c.SummaryTimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid summary timeout %v: must be between 100ms and 1m", c.SummaryTimeout))
	}
	if c.AdvisorCacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid advisor cache TTL %v: must not be negative", c.AdvisorCacheTTL))
	}
	if c.AdvisorCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid advisor cache size %d: must be at least 1", c.AdvisorCacheSize))
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSnapshotSheet == "" {
			errs = append(errs, "Google snapshot sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for snapshot export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateAPI checks what the HTTP server needs on top of Validate.
func (c *Config) ValidateAPI() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("configuration validation failed:\n- JWT_SECRET must be at least 32 characters")
	}
	return nil
}

// ValidateReminders checks what the reminder worker needs on top of Validate.
func (c *Config) ValidateReminders() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var errs []string
	if c.SMTPHost == "" {
		errs = append(errs, "SMTP_HOST is required for invoice reminders")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		errs = append(errs, fmt.Sprintf("invalid SMTP port %d: must be between 1 and 65535", c.SMTPPort))
	}
	if !strings.Contains(c.SenderEmail, "@") {
		errs = append(errs, fmt.Sprintf("invalid sender email '%s'", c.SenderEmail))
	}
	if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("invalid reminder schedule '%s': %v", c.ReminderSchedule, err))
	}
	if c.ReminderLeadDays < 0 || c.ReminderLeadDays > 60 {
		errs = append(errs, fmt.Sprintf("invalid reminder lead days %d: must be between 0 and 60", c.ReminderLeadDays))
	}
	if !slices.Contains(validFrequencies, c.ReminderFrequency) {
		errs = append(errs, fmt.Sprintf("invalid reminder frequency '%s': must be one of %v", c.ReminderFrequency, validFrequencies))
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// SnapshotsEnabled reports whether summary snapshots go to Google Sheets.
func (c *Config) SnapshotsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
