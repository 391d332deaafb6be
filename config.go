package moosedb

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all moosedb configuration.
type Config struct {
	DBPath        string `yaml:"db_path"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
	CacheSize     int    `yaml:"cache_size"` // SQLite pages; negative = KiB
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "moose.db"
	}
	if c.BusyTimeoutMs <= 0 {
		c.BusyTimeoutMs = 10_000
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
