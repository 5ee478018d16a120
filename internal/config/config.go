package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Forecast  ForecastConfig
	Sensors   SensorsConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
	Reporting ReportingConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// ForecastConfig holds the inputs shared by every forecast run.
type ForecastConfig struct {
	TablesDir           string
	ColumnAliasesFile   string
	Timezone            string
	DeliveryThresholdKg float64
}

// SensorsConfig selects where scheduled reports read sensor samples from.
// A CSV path wins over a sheet range.
type SensorsConfig struct {
	CSVPath    string
	SheetRange string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig holds settings for the optional consumption table store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken     string
	PhoneNumberID   string
	BaseURL         string
	APIVersion      string
	ReportRecipient string
}

// ReportingConfig holds the scheduler settings and the parameters of the
// scheduled full-farm report.
type ReportingConfig struct {
	CronSchedule     string
	HousingDate      string
	Line             string
	BirdCount        int
	DilutionStartAge int
	LeftoverKg       float64
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
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
		// Missing .env files are fine when the environment is set directly.
		_ = godotenv.Load()
	}

	threshold, err := getenvFloat("DELIVERY_THRESHOLD_KG", 500)
	if err != nil {
		return nil, err
	}
	birds, err := getenvInt("REPORT_BIRD_COUNT", 0)
	if err != nil {
		return nil, err
	}
	dilution, err := getenvInt("REPORT_DILUTION_START_AGE", 19)
	if err != nil {
		return nil, err
	}
	leftover, err := getenvFloat("REPORT_LEFTOVER_KG", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Forecast: ForecastConfig{
			TablesDir:           getenvWithDefault("TABLES_DIR", "tables"),
			ColumnAliasesFile:   os.Getenv("COLUMN_ALIASES_FILE"),
			Timezone:            getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
			DeliveryThresholdKg: threshold,
		},
		Sensors: SensorsConfig{
			CSVPath:    os.Getenv("SENSORS_CSV_PATH"),
			SheetRange: os.Getenv("SENSORS_SHEET_RANGE"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "silofeed"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReportRecipient: os.Getenv("WHATSAPP_REPORT_RECIPIENT"),
		},
		Reporting: ReportingConfig{
			CronSchedule:     os.Getenv("REPORT_CRON_SCHEDULE"),
			HousingDate:      os.Getenv("REPORT_HOUSING_DATE"),
			Line:             os.Getenv("REPORT_LINE"),
			BirdCount:        birds,
			DilutionStartAge: dilution,
			LeftoverKg:       leftover,
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and that
// optional integrations are either fully configured or absent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Forecast.TablesDir == "" && !c.MongoDB.Enabled() {
		return errors.New("TABLES_DIR or MONGODB_URI must be provided")
	}

	if _, err := time.LoadLocation(c.Forecast.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Forecast.Timezone, err)
	}

	if c.Forecast.DeliveryThresholdKg <= 0 {
		return errors.New("DELIVERY_THRESHOLD_KG must be positive")
	}

	if c.Sensors.SheetRange != "" && c.Sensors.CSVPath == "" {
		switch {
		case c.Sheets.CredentialsPath == "":
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided with SENSORS_SHEET_RANGE")
		case c.Sheets.SpreadsheetID == "":
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided with SENSORS_SHEET_RANGE")
		}
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.ReportRecipient == "":
			return errors.New("WHATSAPP_REPORT_RECIPIENT must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Reporting.Enabled() {
		switch {
		case !c.Sensors.Enabled():
			return errors.New("SENSORS_CSV_PATH or SENSORS_SHEET_RANGE must be provided with REPORT_CRON_SCHEDULE")
		case c.Reporting.HousingDate == "":
			return errors.New("REPORT_HOUSING_DATE must be provided with REPORT_CRON_SCHEDULE")
		case c.Reporting.Line == "":
			return errors.New("REPORT_LINE must be provided with REPORT_CRON_SCHEDULE")
		case c.Reporting.BirdCount <= 0:
			return errors.New("REPORT_BIRD_COUNT must be positive with REPORT_CRON_SCHEDULE")
		case c.Reporting.DilutionStartAge < 1:
			return errors.New("REPORT_DILUTION_START_AGE must be at least 1")
		case c.Reporting.LeftoverKg < 0:
			return errors.New("REPORT_LEFTOVER_KG must not be negative")
		case !c.WhatsApp.Enabled():
			return errors.New("WHATSAPP_TOKEN must be provided with REPORT_CRON_SCHEDULE")
		}
	}

	return nil
}

// Enabled reports whether a table store is configured.
func (c MongoDBConfig) Enabled() bool { return c.URI != "" }

// Enabled reports whether WhatsApp notifications are configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// Enabled reports whether the scheduled report is configured.
func (c ReportingConfig) Enabled() bool { return c.CronSchedule != "" }

// Enabled reports whether a sensor source is configured.
func (c SensorsConfig) Enabled() bool { return c.CSVPath != "" || c.SheetRange != "" }

// Location resolves the configured timezone.
func (c ForecastConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
