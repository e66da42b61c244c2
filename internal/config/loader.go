package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modelgw/pkg/types"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// Instances seeds the registry at startup.
	Instances []types.InstanceDef `json:"instances" yaml:"instances" toml:"instances"`
	// Models to process; empty derives the distinct model ids of Instances.
	Models []string `json:"models" yaml:"models" toml:"models"`

	TickMs            int `json:"tick_ms" yaml:"tick_ms" toml:"tick_ms"`
	RequeueDelayMs    int `json:"requeue_delay_ms" yaml:"requeue_delay_ms" toml:"requeue_delay_ms"`
	RetryBackoffMs    int `json:"retry_backoff_ms" yaml:"retry_backoff_ms" toml:"retry_backoff_ms"`
	ResultTTLSec      int `json:"result_ttl_s" yaml:"result_ttl_s" toml:"result_ttl_s"`
	PollIntervalMs    int `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms"`
	RequestTimeoutMs  int `json:"request_timeout_ms" yaml:"request_timeout_ms" toml:"request_timeout_ms"`
	MaxRetries        int `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	HealthIntervalSec int `json:"health_interval_s" yaml:"health_interval_s" toml:"health_interval_s"`
}

// ModelIDs returns the models to process: the explicit list when set,
// otherwise the distinct model ids of the configured instances.
func (c Config) ModelIDs() []string {
	if len(c.Models) > 0 {
		return c.Models
	}
	seen := make(map[string]bool, len(c.Instances))
	var out []string
	for _, def := range c.Instances {
		if !seen[def.ModelID] {
			seen[def.ModelID] = true
			out = append(out, def.ModelID)
		}
	}
	return out
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
