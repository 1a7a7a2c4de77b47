package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"posctl/internal/domain"
	"posctl/internal/eventbus"
)

// EnvConfigPath overrides the config file location
const EnvConfigPath = "POSCTL_CONFIG"

// Config represents the application configuration
type Config struct {
	Version   int               `mapstructure:"version" toml:"version"`
	API       APIConfig         `mapstructure:"api" toml:"api"`
	Selector  SelectorSettings  `mapstructure:"selector" toml:"selector"`
	Resources map[string]string `mapstructure:"resources" toml:"resources"` // resource name -> endpoint path
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" toml:"base_url"`
	Token          string `mapstructure:"token" toml:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
}

// SelectorSettings tunes every paged selector
type SelectorSettings struct {
	PageSize        int  `mapstructure:"page_size" toml:"page_size"`
	MinSearchLength int  `mapstructure:"min_search_length" toml:"min_search_length"`
	DebounceMS      int  `mapstructure:"debounce_ms" toml:"debounce_ms"`
	ScrollThreshold int  `mapstructure:"scroll_threshold" toml:"scroll_threshold"`
	VisibleRows     int  `mapstructure:"visible_rows" toml:"visible_rows"`
	StaticCursor    bool `mapstructure:"static_cursor" toml:"static_cursor"` // no blinking in the search box
}

// Timeout returns the HTTP timeout as a duration
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Debounce returns the search debounce delay as a duration
func (s SelectorSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the config location, honouring POSCTL_CONFIG
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "posctl", "config.toml")
}

// NewConfigService creates a config service for path ("" means DefaultPath)
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads defaults, the TOML file if present, then POSCTL_* env overrides
func (cs *configService) Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(cs.filePath)
	v.SetEnvPrefix("POSCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath, BaseURL: cfg.API.BaseURL})
	}
	return &cfg, nil
}

// Save writes the configuration as TOML, creating the directory if needed
func (cs *configService) Save(config *Config) error {
	if err := os.MkdirAll(filepath.Dir(cs.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// token may be present, keep the file private
	if err := os.WriteFile(cs.filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:        "http://localhost:3000/api",
			TimeoutSeconds: 15,
		},
		Selector: SelectorSettings{
			PageSize:        20,
			MinSearchLength: 0,
			DebounceMS:      300,
			ScrollThreshold: 2,
			VisibleRows:     8,
		},
		Resources: defaultResources(),
	}
}

func defaultResources() map[string]string {
	res := make(map[string]string)
	for _, name := range domain.Resources() {
		res[name] = "/" + name
	}
	return res
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.timeout_seconds", d.API.TimeoutSeconds)
	v.SetDefault("selector.page_size", d.Selector.PageSize)
	v.SetDefault("selector.min_search_length", d.Selector.MinSearchLength)
	v.SetDefault("selector.debounce_ms", d.Selector.DebounceMS)
	v.SetDefault("selector.scroll_threshold", d.Selector.ScrollThreshold)
	v.SetDefault("selector.visible_rows", d.Selector.VisibleRows)
	v.SetDefault("selector.static_cursor", d.Selector.StaticCursor)
	for name, path := range d.Resources {
		v.SetDefault("resources."+name, path)
	}
}

// normalize repairs values a hand-edited file may have broken
func (c *Config) normalize() {
	d := DefaultConfig()
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = d.API.TimeoutSeconds
	}
	if c.Selector.PageSize <= 0 {
		c.Selector.PageSize = d.Selector.PageSize
	}
	if c.Selector.MinSearchLength < 0 {
		c.Selector.MinSearchLength = 0
	}
	if c.Selector.DebounceMS < 0 {
		c.Selector.DebounceMS = 0
	}
	if c.Selector.ScrollThreshold < 0 {
		c.Selector.ScrollThreshold = 0
	}
	if c.Selector.VisibleRows <= 0 {
		c.Selector.VisibleRows = d.Selector.VisibleRows
	}
	if c.Resources == nil {
		c.Resources = make(map[string]string)
	}
	for name, path := range d.Resources {
		if strings.TrimSpace(c.Resources[name]) == "" {
			c.Resources[name] = path
		}
	}
}
