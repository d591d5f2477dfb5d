package config

import (
	"strconv"
	"time"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the waypoint.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "backend.endpoint"
	Path    string                  // path to the config file used (empty if none)
}

// CLIOverrides captures flag values that can override configuration.
// A nil pointer means "not set" (do not override).
type CLIOverrides struct {
	Endpoint        *string
	MessageEndpoint *string
	Gating          *string
	MountCheck      *string
	CascadeUncheck  *bool
	Verbose         *bool
	ServeAddr       *string
	Seed            *string
	LogFile         *string
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// Zero values in the file layer mean "not set in file" and do not override
// defaults. Booleans therefore can only be switched on by the file.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	resolveDefaults(rc, defaults)
	if fileConfig != nil {
		resolveFile(rc, fileConfig)
	}
	resolveFromEnv(rc, envFn)
	resolveFromCLI(rc, overrides)

	return rc
}

// --- Layer 1: Defaults ---

func resolveDefaults(rc *ResolvedConfig, d *Config) {
	c := rc.Config
	s := rc.Sources

	setValue(&c.Backend.Endpoint, d.Backend.Endpoint, "backend.endpoint", SourceDefault, s)
	setValue(&c.Backend.Timeout, d.Backend.Timeout, "backend.timeout", SourceDefault, s)
	setValue(&c.Backend.UserAgent, d.Backend.UserAgent, "backend.user_agent", SourceDefault, s)
	setValue(&c.Backend.Verbose, d.Backend.Verbose, "backend.verbose", SourceDefault, s)
	setValue(&c.Backend.MaxBodyLogSize, d.Backend.MaxBodyLogSize, "backend.max_body_log_size", SourceDefault, s)

	setValue(&c.Message.Endpoint, d.Message.Endpoint, "message.endpoint", SourceDefault, s)
	setValue(&c.Message.Timeout, d.Message.Timeout, "message.timeout", SourceDefault, s)

	setValue(&c.Progress.Title, d.Progress.Title, "progress.title", SourceDefault, s)
	setValue(&c.Progress.Gating, d.Progress.Gating, "progress.gating", SourceDefault, s)
	setValue(&c.Progress.MountCheck, d.Progress.MountCheck, "progress.mount_check", SourceDefault, s)
	setValue(&c.Progress.CascadeUncheck, d.Progress.CascadeUncheck, "progress.cascade_uncheck", SourceDefault, s)

	setValue(&c.Serve.Addr, d.Serve.Addr, "serve.addr", SourceDefault, s)
	setValue(&c.Serve.Seed, d.Serve.Seed, "serve.seed", SourceDefault, s)

	setValue(&c.UI.LogFile, d.UI.LogFile, "ui.log_file", SourceDefault, s)
}

// --- Layer 2: File ---

func resolveFile(rc *ResolvedConfig, f *Config) {
	c := rc.Config
	s := rc.Sources

	mergeValue(&c.Backend.Endpoint, f.Backend.Endpoint, "backend.endpoint", SourceFile, s)
	mergeValue(&c.Backend.Timeout, f.Backend.Timeout, "backend.timeout", SourceFile, s)
	mergeValue(&c.Backend.UserAgent, f.Backend.UserAgent, "backend.user_agent", SourceFile, s)
	mergeValue(&c.Backend.Verbose, f.Backend.Verbose, "backend.verbose", SourceFile, s)
	mergeValue(&c.Backend.MaxBodyLogSize, f.Backend.MaxBodyLogSize, "backend.max_body_log_size", SourceFile, s)

	mergeValue(&c.Message.Endpoint, f.Message.Endpoint, "message.endpoint", SourceFile, s)
	mergeValue(&c.Message.Timeout, f.Message.Timeout, "message.timeout", SourceFile, s)

	mergeValue(&c.Progress.Title, f.Progress.Title, "progress.title", SourceFile, s)
	mergeValue(&c.Progress.Gating, f.Progress.Gating, "progress.gating", SourceFile, s)
	mergeValue(&c.Progress.MountCheck, f.Progress.MountCheck, "progress.mount_check", SourceFile, s)
	mergeValue(&c.Progress.CascadeUncheck, f.Progress.CascadeUncheck, "progress.cascade_uncheck", SourceFile, s)

	mergeValue(&c.Serve.Addr, f.Serve.Addr, "serve.addr", SourceFile, s)
	mergeValue(&c.Serve.Seed, f.Serve.Seed, "serve.seed", SourceFile, s)

	mergeValue(&c.UI.LogFile, f.UI.LogFile, "ui.log_file", SourceFile, s)
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	WAYPOINT_ENDPOINT          -> backend.endpoint
//	WAYPOINT_TIMEOUT           -> backend.timeout (Go duration)
//	WAYPOINT_MESSAGE_ENDPOINT  -> message.endpoint
//	WAYPOINT_TITLE             -> progress.title
//	WAYPOINT_GATING            -> progress.gating
//	WAYPOINT_MOUNT_CHECK       -> progress.mount_check
//	WAYPOINT_CASCADE_UNCHECK   -> progress.cascade_uncheck (bool)
//	WAYPOINT_SERVE_ADDR        -> serve.addr
//	WAYPOINT_SEED              -> serve.seed
//	WAYPOINT_LOG_FILE          -> ui.log_file
//
// Unparseable durations and booleans are logged and ignored.
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	c := rc.Config
	s := rc.Sources

	envString(envFn, "WAYPOINT_ENDPOINT", &c.Backend.Endpoint, "backend.endpoint", s)
	envString(envFn, "WAYPOINT_MESSAGE_ENDPOINT", &c.Message.Endpoint, "message.endpoint", s)
	envString(envFn, "WAYPOINT_TITLE", &c.Progress.Title, "progress.title", s)
	envString(envFn, "WAYPOINT_GATING", &c.Progress.Gating, "progress.gating", s)
	envString(envFn, "WAYPOINT_MOUNT_CHECK", &c.Progress.MountCheck, "progress.mount_check", s)
	envString(envFn, "WAYPOINT_SERVE_ADDR", &c.Serve.Addr, "serve.addr", s)
	envString(envFn, "WAYPOINT_SEED", &c.Serve.Seed, "serve.seed", s)
	envString(envFn, "WAYPOINT_LOG_FILE", &c.UI.LogFile, "ui.log_file", s)

	if val, ok := envFn("WAYPOINT_TIMEOUT"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			logging.New("config").Warn("ignoring invalid duration", "env", "WAYPOINT_TIMEOUT", "value", val)
		} else {
			c.Backend.Timeout = d
			s["backend.timeout"] = SourceEnv
		}
	}
	if val, ok := envFn("WAYPOINT_CASCADE_UNCHECK"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			logging.New("config").Warn("ignoring invalid boolean", "env", "WAYPOINT_CASCADE_UNCHECK", "value", val)
		} else {
			c.Progress.CascadeUncheck = b
			s["progress.cascade_uncheck"] = SourceEnv
		}
	}
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, o *CLIOverrides) {
	c := rc.Config
	s := rc.Sources

	overrideValue(&c.Backend.Endpoint, o.Endpoint, "backend.endpoint", s)
	overrideValue(&c.Message.Endpoint, o.MessageEndpoint, "message.endpoint", s)
	overrideValue(&c.Progress.Gating, o.Gating, "progress.gating", s)
	overrideValue(&c.Progress.MountCheck, o.MountCheck, "progress.mount_check", s)
	overrideValue(&c.Progress.CascadeUncheck, o.CascadeUncheck, "progress.cascade_uncheck", s)
	overrideValue(&c.Backend.Verbose, o.Verbose, "backend.verbose", s)
	overrideValue(&c.Serve.Addr, o.ServeAddr, "serve.addr", s)
	overrideValue(&c.Serve.Seed, o.Seed, "serve.seed", s)
	overrideValue(&c.UI.LogFile, o.LogFile, "ui.log_file", s)
}

// --- Helpers ---

// setValue unconditionally sets the target to the given value and records the source.
func setValue[T any](target *T, value T, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeValue overwrites the target only if value is not the zero value. For
// file-layer merging, a zero value in the file means "not set in file", so it
// does not override the default.
func mergeValue[T comparable](target *T, value T, path string, source ConfigSource, sources map[string]ConfigSource) {
	var zero T
	if value != zero {
		*target = value
		sources[path] = source
	}
}

// overrideValue applies a CLI override when it is set.
func overrideValue[T any](target *T, value *T, path string, sources map[string]ConfigSource) {
	if value != nil {
		*target = *value
		sources[path] = SourceCLI
	}
}

func envString(envFn EnvFunc, key string, target *string, path string, sources map[string]ConfigSource) {
	if val, ok := envFn(key); ok {
		*target = val
		sources[path] = SourceEnv
	}
}
