// Package config loads the service configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "30s" or "1h".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	// Bare numbers are taken as nanoseconds, matching time.Duration.
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// Redis configures the optional Redis backend. An empty Addr keeps the
// in-memory store.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Encryption configures at-rest encryption of session state. Keys are
// base64-encoded 32-byte AES-256 keys; an empty ActiveKey disables
// encryption.
type Encryption struct {
	ActiveKey    string   `yaml:"activeKey"`
	FallbackKeys []string `yaml:"fallbackKeys"`
}

// Config is the service configuration.
type Config struct {
	Listen     string   `yaml:"listen"`
	LogLevel   string   `yaml:"logLevel"`
	LogFormat  string   `yaml:"logFormat"`
	SessionTTL Duration `yaml:"sessionTTL"`
	LockTTL    Duration `yaml:"lockTTL"`

	// DataDir selects the filesystem store. Redis takes precedence when
	// both are configured; with neither, sessions live in memory.
	DataDir string `yaml:"dataDir"`

	Redis      Redis      `yaml:"redis"`
	Encryption Encryption `yaml:"encryption"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:    ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		LockTTL:   Duration(30 * time.Second),
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
