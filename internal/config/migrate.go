package config

import (
	"fmt"
	"os"

	"github.com/zbiljic/vconfig-go"
)

// loadCreateMigrate loads the config at configPath, or creates a default one
// when configPath is empty, migrating older versions to the current layout.
func loadCreateMigrate(configPath string) (*Config, error) {
	if configPath == "" {
		return NewDefault(), nil
	}

	version, err := vconfig.GetVersion(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, err
	}

	var config *Config

	switch version {
	case configVersionV0:
		if _, err := vconfig.LoadConfig[configV0](configPath); err != nil {
			return nil, errLoadVersion(version, err)
		}
		// v0 carried no settings
		config = NewDefault()
	case configVersionV1:
		old, err := vconfig.LoadConfig[configV1](configPath)
		if err != nil {
			return nil, errLoadVersion(version, err)
		}
		config = migrateV1(old)
	case configVersionV2:
		config, err = loadV2(configPath)
		if err != nil {
			return nil, errLoadVersion(version, err)
		}
	default:
		return nil, errUnknownVersion(version)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return config, nil
}

// loadV2 loads a v2 configuration, zero values take their defaults.
func loadV2(configPath string) (*Config, error) {
	loaded, err := vconfig.LoadConfig[configV2](configPath)
	if err != nil {
		return nil, err
	}

	defaults := newConfigV2()
	if loaded.Providers == nil {
		loaded.Providers = defaults.Providers
	}
	if loaded.Server.Host == "" {
		loaded.Server.Host = defaults.Server.Host
	}
	if loaded.Server.Port == 0 {
		loaded.Server.Port = defaults.Server.Port
	}
	if loaded.Server.ReadTimeout == 0 {
		loaded.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if loaded.Server.WriteTimeout == 0 {
		loaded.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if len(loaded.Server.AllowedOrigins) == 0 {
		loaded.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	if loaded.Server.RateLimit == 0 {
		loaded.Server.RateLimit = defaults.Server.RateLimit
	}
	if loaded.Server.RateBurst == 0 {
		loaded.Server.RateBurst = defaults.Server.RateBurst
	}
	if loaded.Generation.Timeout == 0 {
		loaded.Generation.Timeout = defaults.Generation.Timeout
	}
	if loaded.Generation.MaxConcurrency == 0 {
		loaded.Generation.MaxConcurrency = defaults.Generation.MaxConcurrency
	}

	return loaded, nil
}
