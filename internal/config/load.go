package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigFileName is the file searched for when no path is given.
	ConfigFileName = "waypoint.toml"
	// ConfigEnvVar names a config file when --config is not set.
	ConfigEnvVar = "WAYPOINT_CONFIG"
)

// maxConfigFileSize rejects files that cannot plausibly be a waypoint.toml.
const maxConfigFileSize = 256 << 10 // 256 KiB

// Locate picks the config file to load: explicit (from --config) first, then
// $WAYPOINT_CONFIG, then the nearest waypoint.toml at or above startDir. A
// named file must exist; an empty result means no file was found.
func Locate(explicit string, env EnvFunc, startDir string) (string, error) {
	if explicit != "" {
		return requireFile(explicit, "--config")
	}
	if env != nil {
		if p, ok := env(ConfigEnvVar); ok && p != "" {
			return requireFile(p, ConfigEnvVar)
		}
	}
	return FindConfigFile(startDir)
}

func requireFile(path, from string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("config file from %s: %w", from, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("config file from %s: %s is a directory", from, path)
	}
	return path, nil
}

// FindConfigFile returns the absolute path of the nearest waypoint.toml in
// startDir or one of its parents, or "" when there is none.
func FindConfigFile(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for dir := abs; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			return "", nil
		}
	}
}

// LoadFromFile decodes the waypoint.toml at path. The metadata reports keys
// that matched no field through MetaData.Undecoded, which Validate turns
// into warnings.
func LoadFromFile(path string) (*Config, toml.MetaData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, toml.MetaData{}, fmt.Errorf("loading config %s: file exceeds %d bytes", path, maxConfigFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("loading config %s: %w", path, err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, md, nil
}
