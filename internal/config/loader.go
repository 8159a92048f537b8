package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/zbiljic/vconfig-go"
)

const appName = "blueprint"

// Environment variables that override file values.
const (
	EnvHost  = "BLUEPRINT_HOST"
	EnvPort  = "BLUEPRINT_PORT"
	EnvModel = "BLUEPRINT_MODEL"
)

var (
	// Cached configuration to avoid loading multiple times
	cachedConfig *Config
	// Mutex for thread-safe access to config file
	configMutex = &sync.Mutex{}
)

// Load loads configuration from the search paths using the migration system.
func Load() (*Config, error) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if cachedConfig != nil {
		return cachedConfig, nil
	}

	configPath, err := FindFile()
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	config, err := loadCreateMigrate(configPath)
	if err != nil {
		return nil, err
	}

	cachedConfig = config
	return config, nil
}

// LoadFile loads configuration from an explicit path, bypassing the search
// paths and the cache.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, errInvalidArgument
	}

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	return loadCreateMigrate(path)
}

// Save saves configuration to a file
func Save(config *Config, filename string) error {
	if config == nil || filename == "" {
		return errInvalidArgument
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	// ensure directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errFailedToCreateDirectory(dir, err)
	}

	if err := vconfig.SaveConfig(config, filename); err != nil {
		return errFailedToSaveConfig(filename, err)
	}

	cachedConfig = config

	return nil
}

// FindFile searches for configuration file in hierarchical order
func FindFile() (string, error) {
	for _, path := range GetSearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", os.ErrNotExist
}

// GetSearchPaths returns the list of paths to search for configuration files
func GetSearchPaths() []string {
	var paths []string

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	fileName := appName + ".json"

	// 1. ./.blueprint.json and ./blueprint.json
	paths = append(paths, filepath.Join(cwd, "."+fileName))
	paths = append(paths, filepath.Join(cwd, fileName))

	// 2. parent directories, stopping below home
	dir := cwd
	homeDir := lo.Must(os.UserHomeDir())
	for {
		parent := filepath.Dir(dir)
		if parent == dir || parent == homeDir {
			break
		}
		dir = parent
		paths = append(paths, filepath.Join(dir, fileName))
	}

	// 3. ~/.config/blueprint/blueprint.json
	paths = append(paths, GetDefaultPath())

	// 4. ~/.blueprint.json
	paths = append(paths, filepath.Join(homeDir, "."+fileName))

	return paths
}

// GetPath returns the path where configuration would be loaded from
func GetPath() (string, bool) {
	path, err := FindFile()
	return path, err == nil
}

// GetDefaultPath returns the default path for user configuration
func GetDefaultPath() string {
	homeDir := lo.Must(os.UserHomeDir())
	return filepath.Join(homeDir, ".config", appName, appName+".json")
}

// ResetCache clears the cached configuration (useful for testing)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()

	cachedConfig = nil
}

// ApplyEnv overrides server and model settings from the environment.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvHost)); v != "" {
		c.Server.Host = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errInvalidEnv(EnvPort, v, err)
		}
		c.Server.Port = port
	}

	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		if _, _, err := ParseModelReference(v); err != nil {
			return errInvalidEnv(EnvModel, v, err)
		}
		c.Model = v
	}

	return nil
}
