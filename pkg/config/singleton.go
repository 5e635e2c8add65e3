package config

import "sync"

var (
	globalConfig *Config
	globalPath   string
	configMutex  sync.RWMutex
)

// Load reads path with environment overrides and installs the result as the
// global configuration. On failure the previous configuration stays in
// place.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}

	configMutex.Lock()
	globalConfig = cfg
	globalPath = path
	configMutex.Unlock()

	return cfg, nil
}

// GetConfig returns the global configuration, or nil if nothing has been
// loaded.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadedPath returns the file the global configuration was read from. It is
// empty when the configuration was installed with SetConfig.
func LoadedPath() string {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalPath
}

// SetConfig installs cfg as the global configuration. Intended for tests.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
	globalPath = ""
}
