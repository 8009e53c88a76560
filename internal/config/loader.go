package config

import (
	"fmt"
	"io"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024

// envMapping maps environment variables to config keys. Only listed
// variables are read; everything else in the environment is ignored.
var envMapping = map[string]string{
	"SERVER_HOST":             "server.host",
	"SERVER_HTTP_PORT":        "server.http_port",
	"SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
	"DATABASE_PATH":           "database.path",
	"SESSIONS_TTL":            "sessions.ttl",
	"SESSIONS_SWEEP_INTERVAL": "sessions.sweep_interval",
	"LOGGING_LEVEL":           "logging.level",
	"LOGGING_FORMAT":          "logging.format",
}

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables. An empty configPath skips the file and uses
// defaults plus environment only; a named file must exist and stay under
// the size limit.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envMapping[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
