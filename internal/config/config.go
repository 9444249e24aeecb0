package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/yigit/printq/internal/app/pricing"
	"github.com/yigit/printq/internal/pkg/helpers"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`
		BaseURL     string `yaml:"base_url" env:"SERVER_BASE_URL"`
		MaxUploadMB int    `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	// Prices are kept as decimal strings so they never pass through float64
	Pricing struct {
		BWSingle     string `yaml:"bw_single" env:"PRICE_BW_SINGLE"`
		BWDuplex     string `yaml:"bw_duplex" env:"PRICE_BW_DUPLEX"`
		ColorSingle  string `yaml:"color_single" env:"PRICE_COLOR_SINGLE"`
		ColorDuplex  string `yaml:"color_duplex" env:"PRICE_COLOR_DUPLEX"`
		Binding      string `yaml:"binding" env:"PRICE_BINDING"`
		A3Multiplier string `yaml:"a3_multiplier" env:"PRICE_A3_MULTIPLIER"`
	} `yaml:"pricing"`

	Wallet struct {
		MinTopUp            string `yaml:"min_topup" env:"WALLET_MIN_TOPUP"`
		MaxTopUp            string `yaml:"max_topup" env:"WALLET_MAX_TOPUP"`
		LowBalanceThreshold string `yaml:"low_balance_threshold" env:"WALLET_LOW_BALANCE_THRESHOLD"`
	} `yaml:"wallet"`

	Notifications struct {
		Workers     int    `yaml:"workers" env:"NOTIFY_WORKERS"`
		QueueSize   int    `yaml:"queue_size" env:"NOTIFY_QUEUE_SIZE"`
		SendTimeout string `yaml:"send_timeout" env:"NOTIFY_SEND_TIMEOUT"`
	} `yaml:"notifications"`

	Maintenance struct {
		CleanupSchedule string `yaml:"cleanup_schedule" env:"MAINTENANCE_CLEANUP_SCHEDULE"`
		HealthSchedule  string `yaml:"health_schedule" env:"MAINTENANCE_HEALTH_SCHEDULE"`
		RetentionDays   int    `yaml:"retention_days" env:"MAINTENANCE_RETENTION_DAYS"`
		SupplyThreshold int    `yaml:"supply_threshold" env:"MAINTENANCE_SUPPLY_THRESHOLD"`
	} `yaml:"maintenance"`

	Admin struct {
		RegistrationCode string `yaml:"registration_code" env:"ADMIN_REGISTRATION_CODE"`
		DefaultEmail     string `yaml:"default_email" env:"ADMIN_DEFAULT_EMAIL"`
		DefaultUsername  string `yaml:"default_username" env:"ADMIN_DEFAULT_USERNAME"`
		DefaultPassword  string `yaml:"default_password" env:"ADMIN_DEFAULT_PASSWORD"`
	} `yaml:"admin"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables,
// in increasing order of precedence
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./uploads"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.MaxUploadMB = 50

	// Database defaults
	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "printq"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "printq"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
	config.SMTP.FromName = "PrintQ"
	config.SMTP.UseTLS = true

	defaults := pricing.Default()
	config.Pricing.BWSingle = defaults.BWSingle.StringFixed(2)
	config.Pricing.BWDuplex = defaults.BWDuplex.StringFixed(2)
	config.Pricing.ColorSingle = defaults.ColorSingle.StringFixed(2)
	config.Pricing.ColorDuplex = defaults.ColorDuplex.StringFixed(2)
	config.Pricing.Binding = defaults.Binding.StringFixed(2)
	config.Pricing.A3Multiplier = defaults.A3Multiplier.String()

	config.Wallet.MinTopUp = "5.00"
	config.Wallet.MaxTopUp = "500.00"
	config.Wallet.LowBalanceThreshold = "5.00"

	config.Notifications.Workers = 4
	config.Notifications.QueueSize = 256
	config.Notifications.SendTimeout = "15s"

	config.Maintenance.CleanupSchedule = "@hourly"
	config.Maintenance.HealthSchedule = "@hourly"
	config.Maintenance.RetentionDays = 30
	config.Maintenance.SupplyThreshold = 20

	config.Admin.RegistrationCode = "PRINTQ2024ADMIN"
	config.Admin.DefaultEmail = "PRINTQadmin@gmail.com"
	config.Admin.DefaultUsername = "Admin"
	config.Admin.DefaultPassword = "admin1234"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Notifications.SendTimeout); err != nil {
		return fmt.Errorf("invalid notification send timeout: %w", err)
	}

	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if _, err := config.PricingTable(); err != nil {
		return err
	}

	minTopUp, maxTopUp, err := config.TopUpRange()
	if err != nil {
		return err
	}
	if !minTopUp.IsPositive() || maxTopUp.LessThan(minTopUp) {
		return fmt.Errorf("invalid top-up range %s..%s", minTopUp, maxTopUp)
	}

	if _, err := config.LowBalanceThreshold(); err != nil {
		return err
	}

	if config.Maintenance.RetentionDays <= 0 {
		return fmt.Errorf("maintenance retention days must be positive")
	}

	if config.Maintenance.SupplyThreshold < 0 || config.Maintenance.SupplyThreshold > 100 {
		return fmt.Errorf("maintenance supply threshold must be between 0 and 100")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	return helpers.ParseDuration(c.JWT.AccessTokenExpiration, 24*time.Hour)
}

// NotificationSendTimeout returns the parsed per-notification send timeout
func (c *Config) NotificationSendTimeout() time.Duration {
	return helpers.ParseDuration(c.Notifications.SendTimeout, 15*time.Second)
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

type decimalField struct {
	name  string
	value string
	dest  *decimal.Decimal
}

// PricingTable parses and validates the configured price table
func (c *Config) PricingTable() (pricing.Pricing, error) {
	var p pricing.Pricing
	fields := []decimalField{
		{"pricing.bw_single", c.Pricing.BWSingle, &p.BWSingle},
		{"pricing.bw_duplex", c.Pricing.BWDuplex, &p.BWDuplex},
		{"pricing.color_single", c.Pricing.ColorSingle, &p.ColorSingle},
		{"pricing.color_duplex", c.Pricing.ColorDuplex, &p.ColorDuplex},
		{"pricing.binding", c.Pricing.Binding, &p.Binding},
		{"pricing.a3_multiplier", c.Pricing.A3Multiplier, &p.A3Multiplier},
	}

	for _, f := range fields {
		d, err := parseDecimal(f.name, f.value)
		if err != nil {
			return pricing.Pricing{}, err
		}
		*f.dest = d
	}

	if err := p.Validate(); err != nil {
		return pricing.Pricing{}, fmt.Errorf("invalid pricing: %w", err)
	}
	return p, nil
}

// TopUpRange returns the inclusive bounds for a single wallet top-up
func (c *Config) TopUpRange() (decimal.Decimal, decimal.Decimal, error) {
	minTopUp, err := parseDecimal("wallet.min_topup", c.Wallet.MinTopUp)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	maxTopUp, err := parseDecimal("wallet.max_topup", c.Wallet.MaxTopUp)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return minTopUp, maxTopUp, nil
}

// LowBalanceThreshold returns the default threshold used by the low-balance sweep
func (c *Config) LowBalanceThreshold() (decimal.Decimal, error) {
	return parseDecimal("wallet.low_balance_threshold", c.Wallet.LowBalanceThreshold)
}

func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return d, nil
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
