package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// configFile is the name of the optional configuration file. It is looked
// up in the working directory first, then in the XDG config directory.
const configFile = "ossmap.toml"

// Config holds user configuration loaded from ossmap.toml. Every field has
// a working default; the file is optional.
type Config struct {
	Layout LayoutSection `toml:"layout"`
	Cache  CacheSection  `toml:"cache"`
}

// LayoutSection configures layout defaults.
type LayoutSection struct {
	// Algorithm is the default layout algorithm.
	Algorithm string `toml:"algorithm"`

	// Iterations overrides the simulation budget when positive.
	Iterations int `toml:"iterations"`

	// Seed pins layout randomness when non-zero.
	Seed int64 `toml:"seed"`
}

// CacheSection configures the result cache backend.
type CacheSection struct {
	// Backend selects the cache implementation: "file" (default),
	// "redis", "mongo", or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`

	// Redis backend settings.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// Mongo backend settings.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// Scope prefixes all cache keys, isolating runs that share a
	// Redis or MongoDB backend.
	Scope string `toml:"scope"`
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() Config {
	return Config{
		Layout: LayoutSection{Algorithm: "forceatlas2"},
		Cache:  CacheSection{Backend: "file", RedisAddr: "localhost:6379"},
	}
}

// loadConfig reads the configuration from path, or from the standard
// lookup locations when path is empty. A missing file yields defaults;
// a malformed file is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfig()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Layout.Algorithm == "" {
		cfg.Layout.Algorithm = "forceatlas2"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	return cfg, nil
}

// findConfig returns the first existing configuration file, or empty.
func findConfig() string {
	if _, err := os.Stat(configFile); err == nil {
		return configFile
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// configDir returns the config directory using the XDG standard
// (~/.config/ossmap/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
