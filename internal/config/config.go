package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	TransportAPI  = "api"
	TransportSMTP = "smtp"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Outbound OutboundConfig `mapstructure:"outbound"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Brand    BrandConfig    `mapstructure:"brand"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration.
// URL takes precedence over the discrete host fields.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" validate:"omitempty,oneof=sqlite mysql postgres"`
	URL        string `mapstructure:"url"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// OutboundConfig holds outbound queue configuration
type OutboundConfig struct {
	BatchLimit       int           `mapstructure:"batch_limit" validate:"gte=1"`
	DryRun           bool          `mapstructure:"dry_run"`
	SendTimeout      time.Duration `mapstructure:"send_timeout" validate:"gt=0"`
	SchedulerEnabled bool          `mapstructure:"scheduler_enabled"`
	IntervalMinutes  int           `mapstructure:"interval_minutes"`
}

// TwilioConfig holds Twilio SMS credentials
type TwilioConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	FromNumber string `mapstructure:"from_number"`
}

// SendGridConfig holds SendGrid email credentials
type SendGridConfig struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
	Transport string `mapstructure:"transport" validate:"omitempty,oneof=api smtp"`
	SMTPHost  string `mapstructure:"smtp_host"`
	SMTPPort  int    `mapstructure:"smtp_port"`
}

// OpenAIConfig holds text generation settings
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BrandConfig holds the prompt context shared by every generation
type BrandConfig struct {
	Name     string `mapstructure:"name"`
	Audience string `mapstructure:"audience"`
}

var validate = validator.New()

// LoadConfig loads configuration from .env, an optional config file and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file loaded, continuing with process environment")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.normalize()
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")

	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "data.sqlite3")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("outbound.batch_limit", 25)
	v.SetDefault("outbound.dry_run", true)
	v.SetDefault("outbound.send_timeout", "20s")
	v.SetDefault("outbound.scheduler_enabled", false)
	v.SetDefault("outbound.interval_minutes", 5)

	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.from_number", "")

	v.SetDefault("sendgrid.api_key", "")
	v.SetDefault("sendgrid.from_email", "")
	v.SetDefault("sendgrid.from_name", "")
	v.SetDefault("sendgrid.transport", TransportAPI)
	v.SetDefault("sendgrid.smtp_host", "smtp.sendgrid.net")
	v.SetDefault("sendgrid.smtp_port", 587)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4.1-mini")
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("brand.name", "RAR AI Studio")
	v.SetDefault("brand.audience", "small business")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.sqlite_path", "SQLITE_PATH")

	// Logging
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	// Outbound
	v.BindEnv("outbound.batch_limit", "OUTBOUND_BATCH_LIMIT")
	v.BindEnv("outbound.dry_run", "OUTBOUND_DRY_RUN")
	v.BindEnv("outbound.send_timeout", "OUTBOUND_SEND_TIMEOUT")
	v.BindEnv("outbound.scheduler_enabled", "OUTBOUND_SCHEDULER_ENABLED")
	v.BindEnv("outbound.interval_minutes", "OUTBOUND_INTERVAL_MINUTES")

	// Providers
	v.BindEnv("twilio.account_sid", "TWILIO_ACCOUNT_SID")
	v.BindEnv("twilio.auth_token", "TWILIO_AUTH_TOKEN")
	v.BindEnv("twilio.from_number", "TWILIO_FROM_NUMBER")
	v.BindEnv("sendgrid.api_key", "SENDGRID_API_KEY")
	v.BindEnv("sendgrid.from_email", "SENDGRID_FROM_EMAIL")
	v.BindEnv("sendgrid.from_name", "SENDGRID_FROM_NAME")
	v.BindEnv("sendgrid.transport", "SENDGRID_TRANSPORT")
	v.BindEnv("sendgrid.smtp_host", "SENDGRID_SMTP_HOST")
	v.BindEnv("sendgrid.smtp_port", "SENDGRID_SMTP_PORT")

	// Text generation
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.model", "RAR_MODEL")
	v.BindEnv("openai.timeout", "OPENAI_TIMEOUT")

	v.BindEnv("brand.name", "BRAND_NAME")
	v.BindEnv("brand.audience", "BRAND_AUDIENCE")
}

// normalize trims credential values and resolves the database driver.
// A DATABASE_URL without an explicit driver means postgres; nothing at all means local SQLite.
func (c *Config) normalize() {
	c.Twilio.AccountSID = strings.TrimSpace(c.Twilio.AccountSID)
	c.Twilio.AuthToken = strings.TrimSpace(c.Twilio.AuthToken)
	c.Twilio.FromNumber = strings.TrimSpace(c.Twilio.FromNumber)
	c.SendGrid.APIKey = strings.TrimSpace(c.SendGrid.APIKey)
	c.SendGrid.FromEmail = strings.TrimSpace(c.SendGrid.FromEmail)
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.Model = strings.TrimSpace(c.OpenAI.Model)
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4.1-mini"
	}

	c.Database.URL = strings.TrimSpace(c.Database.URL)
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		if c.Database.URL != "" {
			c.Database.Driver = DriverPostgres
		} else {
			c.Database.Driver = DriverSQLite
		}
	}
	if c.Database.Driver == "postgresql" {
		c.Database.Driver = DriverPostgres
	}
}

// GetDSN returns the database connection string for the configured driver
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case DriverPostgres:
		if c.URL != "" {
			// pgx understands both postgres:// and postgresql:// schemes.
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	case DriverMySQL:
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	default:
		return c.SQLitePath
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DriverMySQL, DriverPostgres:
		if c.Database.URL == "" && (c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "") {
			return fmt.Errorf("database url or host, user, and dbname are required")
		}
	}

	if c.Outbound.SchedulerEnabled && c.Outbound.IntervalMinutes <= 0 {
		return fmt.Errorf("outbound interval must be greater than 0 when the scheduler is enabled")
	}

	return nil
}

// Ready reports whether every Twilio credential is present
func (c TwilioConfig) Ready() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// Ready reports whether every SendGrid credential is present
func (c SendGridConfig) Ready() bool {
	return c.APIKey != "" && c.FromEmail != ""
}
