// Package clientconfig loads the storefront CLI configuration from
// storefront.yaml, STOREFRONT_* environment variables and command flags.
package clientconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the storefront client
type Config struct {
	API  APIConfig  `mapstructure:"api"`
	UI   UIConfig   `mapstructure:"ui"`
	Auth AuthConfig `mapstructure:"auth"`
	Log  LogConfig  `mapstructure:"log"`
}

// APIConfig holds catalog API connection settings
type APIConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	Language             string `mapstructure:"language"`
}

// UIConfig holds the catalog browser presentation flags
type UIConfig struct {
	GridColumns      int      `mapstructure:"grid_columns"`
	QuantitySelector bool     `mapstructure:"quantity_selector"`
	PlaceholderImage string   `mapstructure:"placeholder_image"`
	PinnedCategories []string `mapstructure:"pinned_categories"`
	SearchDebounceMs int      `mapstructure:"search_debounce_ms"`
}

// AuthConfig holds the shopper credentials used to sign in. Keep the
// password in STOREFRONT_AUTH_PASSWORD rather than the config file.
type AuthConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// LogConfig controls where client logs go; the TUI owns the terminal
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// New returns a viper instance with defaults and env overrides applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("storefront")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/kanistore")

	setDefaults(v)

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (optional) into v and decodes it.
// An explicit configFile must exist; the default search path may be empty.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.UI.GridColumns < 1 {
		return fmt.Errorf("ui.grid_columns must be at least 1")
	}
	if c.Auth.Email != "" && c.Auth.Password == "" {
		return fmt.Errorf("auth.password is required when auth.email is set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 15)
	v.SetDefault("api.max_retries", 2)
	v.SetDefault("api.max_requests_per_second", 20)
	v.SetDefault("api.language", "en")

	v.SetDefault("ui.grid_columns", 4)
	v.SetDefault("ui.quantity_selector", true)
	v.SetDefault("ui.placeholder_image", "assets/placeholder.png")
	v.SetDefault("ui.pinned_categories", []string{"Offers"})
	v.SetDefault("ui.search_debounce_ms", 150)

	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
