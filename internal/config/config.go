// Package config provides configuration loading for the conductor.
//
// Values come from the environment first; an optional YAML file named by
// CONDUCTOR_CONFIG_FILE is then overlaid on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nucleus/cdc-conductor/internal/storage"
)

// EnvConfigFile names the optional YAML overlay.
const EnvConfigFile = "CONDUCTOR_CONFIG_FILE"

// Config holds conductor configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Kubernetes   KubernetesConfig   `yaml:"kubernetes"`
	Storage      StorageConfig      `yaml:"storage"`
	Destinations DestinationsConfig `yaml:"destinations"`
	Signals      SignalsConfig      `yaml:"signals"`
	Preflight    PreflightConfig    `yaml:"preflight"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// KubernetesConfig selects the cluster and namespace deployments go to.
// An empty Kubeconfig means in-cluster configuration.
type KubernetesConfig struct {
	Namespace  string `yaml:"namespace"`
	Kubeconfig string `yaml:"kubeconfig"`
}

// StorageConfig is the global offset and schema history backend selection.
type StorageConfig struct {
	Offset        storage.Settings `yaml:"offset"`
	SchemaHistory storage.Settings `yaml:"schemaHistory"`
}

// DestinationsConfig bounds connection validation.
type DestinationsConfig struct {
	// TimeoutSeconds applies to every family without an override.
	TimeoutSeconds int `yaml:"timeoutSeconds"`

	// Timeouts overrides TimeoutSeconds per destination type tag.
	Timeouts map[string]int `yaml:"timeouts"`
}

// SignalsConfig configures delivery of signals to running pipelines.
type SignalsConfig struct {
	URLTemplate    string  `yaml:"urlTemplate"`
	RateLimit      float64 `yaml:"rateLimit"`
	RateBurst      int     `yaml:"rateBurst"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
}

// PreflightConfig toggles the startup storage check.
type PreflightConfig struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeoutSeconds"`
}

// Load builds configuration from environment and the optional YAML overlay.
func Load() (*Config, error) {
	cfg := FromEnv()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads configuration from environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("CONDUCTOR_HOST", "0.0.0.0"),
			Port: getEnvInt("CONDUCTOR_PORT", 8080),
		},
		Kubernetes: KubernetesConfig{
			Namespace:  getEnv("CONDUCTOR_NAMESPACE", "debezium"),
			Kubeconfig: getEnv("KUBECONFIG", ""),
		},
		Storage: StorageConfig{
			Offset: storage.Settings{
				Type:   getEnv("CONDUCTOR_OFFSET_STORAGE_TYPE", "memory"),
				Config: prefixedEnv("CONDUCTOR_OFFSET_STORAGE_CONFIG_"),
			},
			SchemaHistory: storage.Settings{
				Type:   getEnv("CONDUCTOR_SCHEMA_HISTORY_TYPE", "memory"),
				Config: prefixedEnv("CONDUCTOR_SCHEMA_HISTORY_CONFIG_"),
			},
		},
		Destinations: DestinationsConfig{
			TimeoutSeconds: getEnvInt("CONDUCTOR_DESTINATION_TIMEOUT_SECONDS", 5),
		},
		Signals: SignalsConfig{
			URLTemplate:    getEnv("CONDUCTOR_SIGNAL_URL_TEMPLATE", ""),
			RateLimit:      getEnvFloat("CONDUCTOR_SIGNAL_RATE_LIMIT", 10),
			RateBurst:      getEnvInt("CONDUCTOR_SIGNAL_RATE_BURST", 5),
			TimeoutSeconds: getEnvInt("CONDUCTOR_SIGNAL_TIMEOUT_SECONDS", 10),
		},
		Preflight: PreflightConfig{
			Enabled:        getEnvBool("CONDUCTOR_PREFLIGHT_ENABLED", false),
			TimeoutSeconds: getEnvInt("CONDUCTOR_PREFLIGHT_TIMEOUT_SECONDS", 10),
		},
	}
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Storage.Offset.Type) == "" {
		return fmt.Errorf("offset storage type must be set")
	}
	if strings.TrimSpace(c.Storage.SchemaHistory.Type) == "" {
		return fmt.Errorf("schema history storage type must be set")
	}
	if c.Destinations.TimeoutSeconds <= 0 {
		return fmt.Errorf("destination timeout must be positive")
	}
	if c.Signals.RateLimit <= 0 || c.Signals.RateBurst <= 0 {
		return fmt.Errorf("signal rate limit and burst must be positive")
	}
	return nil
}

// Addr returns the listen address of the HTTP API.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DestinationTimeout returns the validation timeout for a destination type.
func (c *Config) DestinationTimeout(typ string) time.Duration {
	secs := c.Destinations.TimeoutSeconds
	for k, v := range c.Destinations.Timeouts {
		if strings.EqualFold(k, typ) && v > 0 {
			secs = v
			break
		}
	}
	return time.Duration(secs) * time.Second
}

// SignalTimeout returns the per-signal delivery timeout.
func (c *Config) SignalTimeout() time.Duration {
	return time.Duration(c.Signals.TimeoutSeconds) * time.Second
}

// PreflightTimeout bounds the whole startup storage check.
func (c *Config) PreflightTimeout() time.Duration {
	return time.Duration(c.Preflight.TimeoutSeconds) * time.Second
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// prefixedEnv collects storage keys from the environment. The remainder of
// the variable name is lowercased and underscores become dots, so
// CONDUCTOR_OFFSET_STORAGE_CONFIG_JDBC_URL maps to jdbc.url.
func prefixedEnv(prefix string) map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, prefix), "_", "."))
		out[key] = val
	}
	return out
}
