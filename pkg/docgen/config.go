package docgen

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the engine
type Config struct {
	// CacheMaxSize is the maximum number of compiled expressions to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cacheMaxSize"`
	// CacheTTL is the time-to-live for compiled expressions. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cacheTTL"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"logLevel"`
	// MaxRenderDepth limits the nesting of FOR and IF blocks
	MaxRenderDepth int `yaml:"maxRenderDepth"`
	// StrictMode makes unknown names in expressions an error, and unmatched
	// bracket loop closes an error instead of a best-effort close
	StrictMode bool `yaml:"strictMode"`
	// NoSandbox evaluates snippets directly against the render context
	NoSandbox bool `yaml:"noSandbox"`
	// GlobalHelper installs c in the process-wide fallback scope for the
	// duration of each render. Renders are serialized while it is set.
	GlobalHelper bool `yaml:"globalHelper"`
	// LineBreaks turns "\n" in inserted text into line breaks
	LineBreaks bool `yaml:"lineBreaks"`
}

var (
	globalConfig      = ConfigFromEnvironment()
	globalConfigMutex sync.RWMutex
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:   256,
		CacheTTL:       0,
		LogLevel:       "info",
		MaxRenderDepth: 64,
		LineBreaks:     true,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables.
// DOCGEN_CONFIG names a YAML or JSON file applied before the other variables.
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	if path := os.Getenv("DOCGEN_CONFIG"); path != "" {
		if loaded, err := LoadConfigFile(path); err == nil {
			config = loaded
		} else {
			fmt.Fprintf(os.Stderr, "docgen: ignoring DOCGEN_CONFIG: %v\n", err)
		}
	}

	if val := os.Getenv("DOCGEN_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	if val := os.Getenv("DOCGEN_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	if val := os.Getenv("DOCGEN_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	if val := os.Getenv("DOCGEN_MAX_RENDER_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxRenderDepth = depth
		}
	}

	if val := os.Getenv("DOCGEN_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}
	if val := os.Getenv("DOCGEN_NO_SANDBOX"); val != "" {
		config.NoSandbox = parseBool(val)
	}
	if val := os.Getenv("DOCGEN_GLOBAL_HELPER"); val != "" {
		config.GlobalHelper = parseBool(val)
	}
	if val := os.Getenv("DOCGEN_LINE_BREAKS"); val != "" {
		config.LineBreaks = parseBool(val)
	}

	return config
}

// LoadConfigFile reads a YAML (or JSON) file over the defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML (or JSON) over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, NewValidationError("config", "", err.Error())
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	issues := &ValidationError{}
	if c.CacheMaxSize < 0 {
		issues.add("cacheMaxSize", strconv.Itoa(c.CacheMaxSize), "cannot be negative")
	}
	if c.CacheTTL < 0 {
		issues.add("cacheTTL", c.CacheTTL.String(), "cannot be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "off":
	default:
		issues.add("logLevel", c.LogLevel, "must be one of debug, info, warn, error, off")
	}
	if c.MaxRenderDepth <= 0 {
		issues.add("maxRenderDepth", strconv.Itoa(c.MaxRenderDepth), "must be positive")
	}
	return issues.err()
}

// GetGlobalConfig returns a copy of the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// outside the lock: the logger reads the config back
	UpdateLoggerFromConfig()
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
