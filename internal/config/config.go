package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/bencodectl/internal/bencode"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultName         = "bencodectl"
	DefaultAddr         = ":9200"
	DefaultMaxBodyBytes = 4 << 20
)

type ServerConfig struct {
	Name         string        `toml:"name"`
	Addr         string        `toml:"addr"`
	CorsOrigins  []string      `toml:"cors_origins"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	Decoder      DecoderConfig `toml:"decoder"`
}

type DecoderConfig struct {
	MaxDepth      int  `toml:"max_depth"`
	AllowTrailing bool `toml:"allow_trailing"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:         DefaultName,
		Addr:         DefaultAddr,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Decoder: DecoderConfig{
			MaxDepth: bencode.DefaultMaxDepth,
		},
	}
}

// LoadServerConfig reads path over the defaults. Keys absent from the file
// keep their default values.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if err := loadToml(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("server config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("server config max_body_bytes must be positive")
	}
	if err := ValidateDecoderConfig(cfg.Decoder); err != nil {
		return fmt.Errorf("decoder invalid: %w", err)
	}
	return nil
}

func ValidateDecoderConfig(cfg DecoderConfig) error {
	if cfg.MaxDepth < 1 || cfg.MaxDepth > bencode.MaxNestingDepth {
		return fmt.Errorf("max_depth must be between 1 and %d, got %d", bencode.MaxNestingDepth, cfg.MaxDepth)
	}
	return nil
}
