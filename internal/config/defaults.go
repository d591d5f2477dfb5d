package config

import "time"

// NewDefaults returns a Config populated with all default values. The
// backend and fact endpoints match the services the checklist was built
// against.
func NewDefaults() *Config {
	return &Config{
		Backend: BackendConfig{
			Endpoint:       "http://localhost:3000/",
			Timeout:        10 * time.Second,
			UserAgent:      "waypoint",
			MaxBodyLogSize: 2048,
		},
		Message: MessageConfig{
			Endpoint: "https://uselessfacts.jsph.pl/random.json",
			Timeout:  5 * time.Second,
		},
		Progress: ProgressConfig{
			Title:      "My Startup Progress",
			Gating:     "previous",
			MountCheck: "before-load",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:3000",
		},
	}
}
