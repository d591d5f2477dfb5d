package config

import "time"

// Config is the top-level configuration structure mapping to waypoint.toml.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Message  MessageConfig  `toml:"message"`
	Progress ProgressConfig `toml:"progress"`
	Serve    ServeConfig    `toml:"serve"`
	UI       UIConfig       `toml:"ui"`
}

// BackendConfig maps to the [backend] section in waypoint.toml.
type BackendConfig struct {
	Endpoint       string        `toml:"endpoint"`
	Timeout        time.Duration `toml:"timeout"`
	UserAgent      string        `toml:"user_agent"`
	Verbose        bool          `toml:"verbose"`
	MaxBodyLogSize int           `toml:"max_body_log_size"`
}

// MessageConfig maps to the [message] section in waypoint.toml.
type MessageConfig struct {
	Endpoint string        `toml:"endpoint"`
	Timeout  time.Duration `toml:"timeout"`
}

// ProgressConfig maps to the [progress] section in waypoint.toml.
type ProgressConfig struct {
	Title          string `toml:"title"`
	Gating         string `toml:"gating"`
	MountCheck     string `toml:"mount_check"`
	CascadeUncheck bool   `toml:"cascade_uncheck"`
}

// ServeConfig maps to the [serve] section in waypoint.toml.
type ServeConfig struct {
	Addr string `toml:"addr"`
	Seed string `toml:"seed"`
}

// UIConfig maps to the [ui] section in waypoint.toml.
type UIConfig struct {
	// LogFile receives log output while the full-screen TUI is running.
	// Empty discards it.
	LogFile string `toml:"log_file"`
}
