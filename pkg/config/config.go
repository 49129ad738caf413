package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Edgar struct {
		BaseURL     string        `yaml:"base_url"`
		DataBaseURL string        `yaml:"data_base_url"`
		UserAgent   string        `yaml:"user_agent"`
		MaxRPS      float64       `yaml:"max_rps"`
		MaxRetries  int           `yaml:"max_retries"`
		BackoffMin  time.Duration `yaml:"backoff_min"`
		BackoffMax  time.Duration `yaml:"backoff_max"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"edgar"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory, redis, or layered
		TTL     time.Duration `yaml:"ttl"`
		Memory  struct {
			MaxSize int `yaml:"max_size"`
		} `yaml:"memory"`
		Redis struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Scrape struct {
		Workers int `yaml:"workers"`
	} `yaml:"scrape"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Override with environment variables
	if v := os.Getenv("SEC_USER_AGENT"); v != "" {
		c.Edgar.UserAgent = v
	}
	if v := os.Getenv("SEC_MAX_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.Edgar.MaxRPS = rps
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Cache.Redis.Port = p
			}
		}
	}
	if v := os.Getenv("SCRAPE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scrape.Workers = n
		}
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Edgar.BaseURL == "" {
		c.Edgar.BaseURL = "https://www.sec.gov"
	}
	if c.Edgar.DataBaseURL == "" {
		c.Edgar.DataBaseURL = "https://data.sec.gov"
	}
	if c.Edgar.MaxRPS == 0 {
		c.Edgar.MaxRPS = 10
	}
	if c.Edgar.MaxRetries == 0 {
		c.Edgar.MaxRetries = 3
	}
	if c.Edgar.BackoffMin == 0 {
		c.Edgar.BackoffMin = 500 * time.Millisecond
	}
	if c.Edgar.BackoffMax == 0 {
		c.Edgar.BackoffMax = 8 * time.Second
	}
	if c.Edgar.Timeout == 0 {
		c.Edgar.Timeout = 30 * time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Cache.Memory.MaxSize == 0 {
		c.Cache.Memory.MaxSize = 1000
	}
	if c.Scrape.Workers == 0 {
		c.Scrape.Workers = 4
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Edgar.UserAgent == "" {
		return fmt.Errorf("edgar.user_agent is required (identify yourself per the repository's access policy)")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis', or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Edgar.MaxRPS <= 0 {
		return fmt.Errorf("edgar.max_rps must be positive")
	}
	if c.Scrape.Workers < 0 {
		return fmt.Errorf("scrape.workers cannot be negative")
	}
	return nil
}
