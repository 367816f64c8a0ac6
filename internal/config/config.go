package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rekanorman/getter/internal/logging"
)

// Config defines configuration for the getter CLI.
type Config struct {
	// URL is the resource to fetch, as host/page.
	URL string `yaml:"url"`

	// Port is the server port.
	Port int `yaml:"port"`

	// Workers is the number of parallel download workers.
	Workers int `yaml:"workers"`

	// QueueCapacity bounds how many tasks may be outstanding at once.
	QueueCapacity int `yaml:"queue_capacity"`

	// Timeout bounds each connection's request/response exchange.
	Timeout time.Duration `yaml:"-"`

	// Output is the local file to write the resource to.
	Output string `yaml:"output"`

	// Bucket is a gocloud bucket URL to write to instead of a file.
	Bucket string `yaml:"bucket"`

	// Object is the object key used when writing to a bucket.
	Object string `yaml:"object"`

	// Progress enables the terminal progress bar.
	Progress bool `yaml:"progress"`

	// Logging controls log level and destinations.
	Logging logging.Config `yaml:"logging"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Port:          80,
		Workers:       8,
		QueueCapacity: 16,
		Timeout:       30 * time.Second,
		Logging:       logging.DefaultConfig(),
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	URL           string         `yaml:"url"`
	Port          int            `yaml:"port"`
	Workers       int            `yaml:"workers"`
	QueueCapacity int            `yaml:"queue_capacity"`
	Timeout       string         `yaml:"timeout"`
	Output        string         `yaml:"output"`
	Bucket        string         `yaml:"bucket"`
	Object        string         `yaml:"object"`
	Progress      bool           `yaml:"progress"`
	Logging       logging.Config `yaml:"logging"`
}

// LoadFromFile loads configuration from a YAML file, layered over the
// defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Port != 0 {
		cfg.Port = yc.Port
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.QueueCapacity != 0 {
		cfg.QueueCapacity = yc.QueueCapacity
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Object != "" {
		cfg.Object = yc.Object
	}
	cfg.Progress = yc.Progress
	if yc.Logging.Level != "" {
		cfg.Logging = yc.Logging
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables with the
// GETTER_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("GETTER_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("GETTER_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse GETTER_PORT: %w", err)
		}
		c.Port = n
	}
	if v := os.Getenv("GETTER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse GETTER_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("GETTER_QUEUE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse GETTER_QUEUE_CAPACITY: %w", err)
		}
		c.QueueCapacity = n
	}
	if v := os.Getenv("GETTER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse GETTER_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("GETTER_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("GETTER_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("GETTER_OBJECT"); v != "" {
		c.Object = v
	}
	if v := os.Getenv("GETTER_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("GETTER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GETTER_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: url is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.QueueCapacity <= 0 {
		return errors.New("config: queue_capacity must be positive")
	}
	if c.Bucket != "" && c.Object == "" {
		return errors.New("config: object is required when bucket is set")
	}
	return nil
}

// Merge merges override values into c, returning a new Config. Zero
// values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Port != 0 {
		c.Port = override.Port
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.QueueCapacity != 0 {
		c.QueueCapacity = override.QueueCapacity
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Object != "" {
		c.Object = override.Object
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Logging.Level != "" {
		c.Logging.Level = override.Logging.Level
	}
	if override.Logging.FilePath != "" {
		c.Logging.FilePath = override.Logging.FilePath
	}
	return c
}
