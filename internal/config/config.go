package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Flutterwave FlutterwaveConfig `yaml:"flutterwave"`
	Email       EmailConfig       `yaml:"email"`
	SMTP        SMTPConfig        `yaml:"smtp"`
	SendGrid    SendGridConfig    `yaml:"sendgrid"`
	SMS         SMSConfig         `yaml:"sms"`
	JWT         JWTConfig         `yaml:"jwt"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// FlutterwaveConfig contains payment gateway settings
type FlutterwaveConfig struct {
	Provider       string `yaml:"provider"` // "flutterwave" or "mock"
	BaseURL        string `yaml:"base_url"`
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	RedirectURL    string `yaml:"redirect_url"`
	SuccessURL     string `yaml:"success_url"`
	FailureURL     string `yaml:"failure_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// EmailConfig selects the outbound email provider
type EmailConfig struct {
	Provider string `yaml:"provider"` // "smtp" or "sendgrid"
	From     string `yaml:"from"`
}

// SMTPConfig contains SMTP relay settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// SendGridConfig contains SendGrid API settings
type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

// SMSConfig contains SMS provider settings
type SMSConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	SenderID string `yaml:"sender_id"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// SchedulerConfig contains cron expressions and job tuning
type SchedulerConfig struct {
	ReverifyStalePayments string `yaml:"reverify_stale_payments"`
	StalePaymentAgeMins   int    `yaml:"stale_payment_age_minutes"`
	StalePaymentBatch     int    `yaml:"stale_payment_batch"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("FLW_SECRET_KEY"); val != "" {
		c.Flutterwave.SecretKey = val
	}
	if val := os.Getenv("FLW_WEBHOOK_SECRET"); val != "" {
		c.Flutterwave.WebhookSecret = val
	}
	if val := os.Getenv("FLW_REDIRECT_URL"); val != "" {
		c.Flutterwave.RedirectURL = val
	}

	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}

	if val := os.Getenv("SMS_API_KEY"); val != "" {
		c.SMS.APIKey = val
	}
	if val := os.Getenv("SMS_SENDER_ID"); val != "" {
		c.SMS.SenderID = val
	}

	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}
}

// Validate checks that required configuration values are present
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Flutterwave.Provider != "mock" {
		if c.Flutterwave.SecretKey == "" {
			return fmt.Errorf("flutterwave secret key is required")
		}
		if c.Flutterwave.WebhookSecret == "" {
			return fmt.Errorf("flutterwave webhook secret is required")
		}
	}
	if c.Scheduler.StalePaymentAgeMins <= 0 {
		c.Scheduler.StalePaymentAgeMins = 30
	}
	if c.Scheduler.StalePaymentBatch <= 0 {
		c.Scheduler.StalePaymentBatch = 50
	}
	if c.Flutterwave.TimeoutSeconds <= 0 {
		c.Flutterwave.TimeoutSeconds = 15
	}
	return nil
}

// GetServerAddress returns the listen address for the HTTP server
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetDatabaseConnectionString returns the PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Database, sslMode)
}
