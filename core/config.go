package core

import (
	"fmt"
	"strings"
)

type LookupConfig struct {
	KeyPrefix        string `koanf:"key_prefix" mapstructure:"key_prefix"`
	DefaultID        string `koanf:"default_id" mapstructure:"default_id"`
	SecretKeyNode    string `koanf:"secret_key_node" mapstructure:"secret_key_node"`
	KeyListDelimiter string `koanf:"key_list_delimiter" mapstructure:"key_list_delimiter"`
}

type LimitsConfig struct {
	MaxBodyBytes int64 `koanf:"max_body_bytes" mapstructure:"max_body_bytes"`
}

type Config struct {
	ServiceName string       `koanf:"service_name" mapstructure:"service_name"`
	Lookup      LookupConfig `koanf:"lookup" mapstructure:"lookup"`
	Limits      LimitsConfig `koanf:"limits" mapstructure:"limits"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "receivers",
		Lookup: LookupConfig{
			KeyPrefix:        "receivers",
			DefaultID:        DefaultConfigurationID,
			SecretKeyNode:    "secretKey",
			KeyListDelimiter: ",",
		},
		Limits: LimitsConfig{
			MaxBodyBytes: 1 << 20,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Lookup.KeyPrefix) == "" {
		return fmt.Errorf("core: lookup.key_prefix is required")
	}
	if strings.TrimSpace(c.Lookup.DefaultID) == "" {
		return fmt.Errorf("core: lookup.default_id is required")
	}
	if c.Limits.MaxBodyBytes < 0 {
		return fmt.Errorf("core: limits.max_body_bytes must not be negative")
	}
	return nil
}
