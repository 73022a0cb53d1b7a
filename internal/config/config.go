package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Backend names accepted in SYNC_BACKEND.
const (
	BackendLocal    = "local"
	BackendSheets   = "sheets"
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Sync      SyncConfig
	Local     LocalConfig
	Sheets    SheetsConfig
	Supabase  SupabaseConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// SyncConfig selects the system of record and how often the catalog is refreshed from it.
type SyncConfig struct {
	Backend      string
	CronSchedule string
}

// LocalConfig points at the on-disk store used for the persisted cache.
type LocalConfig struct {
	DataDir string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// SupabaseConfig contains the project endpoint and the user credentials used for row ownership.
type SupabaseConfig struct {
	URL      string
	AnonKey  string
	Email    string
	Password string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
	UserID string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API. Notifications
// are disabled when AccessToken or PhoneNumberID is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	ManagerID     string
	VerifyToken   string
}

// Enabled reports whether enough is configured to send messages.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.ManagerID != ""
}

// CommandsEnabled reports whether the inbound webhook can be verified and answered.
func (c WhatsAppConfig) CommandsEnabled() bool {
	return c.Enabled() && c.VerifyToken != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Sync: SyncConfig{
			Backend:      strings.ToLower(getenvWithDefault("SYNC_BACKEND", BackendLocal)),
			CronSchedule: getenvWithDefault("SYNC_CRON_SCHEDULE", "*/15 * * * *"),
		},
		Local: LocalConfig{
			DataDir: getenvWithDefault("LOCAL_DATA_DIR", "data"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Supabase: SupabaseConfig{
			URL:      os.Getenv("SUPABASE_URL"),
			AnonKey:  os.Getenv("SUPABASE_ANON_KEY"),
			Email:    os.Getenv("SUPABASE_EMAIL"),
			Password: os.Getenv("SUPABASE_PASSWORD"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockroom"),
			UserID: os.Getenv("MONGODB_USER_ID"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
			VerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that the fields needed to start the process are populated.
// Backend credentials are not checked here; the sync gateway reports them.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Sync.Backend {
	case BackendLocal, BackendSheets, BackendSupabase, BackendMongo:
	default:
		return fmt.Errorf("SYNC_BACKEND %q is not one of local, sheets, supabase, mongo", c.Sync.Backend)
	}

	if c.Local.DataDir == "" {
		return errors.New("LOCAL_DATA_DIR must be provided")
	}

	if c.Sync.CronSchedule == "" {
		return errors.New("SYNC_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
