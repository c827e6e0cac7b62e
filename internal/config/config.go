package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	User     string         `mapstructure:"user" yaml:"user" validate:"required,email"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database" validate:"required"`
	Holiday  HolidayConfig  `mapstructure:"holiday" yaml:"holiday"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host" yaml:"host" validate:"required"`
	Port     int    `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	User     string `mapstructure:"user" yaml:"user" validate:"required"`
	Password string `mapstructure:"password" yaml:"password" validate:"required"`
	Database string `mapstructure:"database" yaml:"database" validate:"required"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// HolidayConfig holds public-holiday feed settings
type HolidayConfig struct {
	Country   string   `mapstructure:"country" yaml:"country" validate:"required,len=2,alpha"`
	AllowList []string `mapstructure:"allow_list" yaml:"allow_list"`
	TimeoutMs int      `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}

// SyncConfig holds linkage reconciliation behavior
type SyncConfig struct {
	ReconcileSchedule string `mapstructure:"reconcile_schedule" yaml:"reconcile_schedule"`
	DebounceMs        int    `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, sslMode,
	)
}

// DefaultHolidayAllowList is the set of public holidays surfaced on the
// calendar. Entries are glob patterns matched against the feed's local
// holiday name.
var DefaultHolidayAllowList = []string{
	"New Year's Day",
	"New Year's Eve",
	"Martin Luther King Jr. Day",
	"Presidents' Day",
	"Memorial Day",
	"Independence Day",
	"Labour Day",
	"Columbus Day",
	"Veterans Day",
	"Thanksgiving Day",
	"Christmas Day",
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Port:    5432,
			SSLMode: "require",
		},
		Holiday: HolidayConfig{
			Country:   "US",
			AllowList: DefaultHolidayAllowList,
			TimeoutMs: 10000,
		},
		Sync: SyncConfig{
			ReconcileSchedule: "@every 1h",
			DebounceMs:        2000,
		},
	}
}

// Load reads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.sslmode", defaults.Database.SSLMode)
	v.SetDefault("holiday.country", defaults.Holiday.Country)
	v.SetDefault("holiday.allow_list", defaults.Holiday.AllowList)
	v.SetDefault("holiday.timeout_ms", defaults.Holiday.TimeoutMs)
	v.SetDefault("sync.reconcile_schedule", defaults.Sync.ReconcileSchedule)
	v.SetDefault("sync.debounce_ms", defaults.Sync.DebounceMs)

	// Configure config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
	}

	// Enable environment variable substitution
	v.AutomaticEnv()
	v.SetEnvPrefix("DAYBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is okay if we have environment variables
	}

	// Unmarshal into struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in password
	cfg.Database.Password = os.ExpandEnv(cfg.Database.Password)

	// Country codes arrive in whatever case the user typed
	cfg.Holiday.Country = NormalizeCountry(cfg.Holiday.Country)

	// Validate
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ConfigFilePath resolves the config file actually in use: the explicit
// path when given, otherwise the standard location.
func ConfigFilePath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return filepath.Join(getConfigDir(), "config.yaml")
}

// WriteTemplate marshals a config to YAML and writes it to path with
// owner-only permissions (it carries the database password reference).
func WriteTemplate(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// getConfigDir returns the appropriate config directory for the OS
func getConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "daybook")
		}
		return filepath.Join(os.Getenv("USERPROFILE"), ".config", "daybook")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "daybook")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "daybook")
	}
}

// GetStateDir returns the directory for local files, creating it if needed
func GetStateDir() (string, error) {
	dir := getConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// NormalizeCountry converts a country value to an ISO 3166-1 alpha-2 code
// shape: trimmed, uppercased, empty if it is not two ASCII letters.
func NormalizeCountry(code string) string {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return ""
	}
	for _, r := range code {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return ""
		}
	}
	return strings.ToUpper(code)
}
