// Package gateway is Waypoint's I/O boundary: a GraphQL client for the
// phases/tasks backend and an HTTP client for the closing message service.
// It implements progress.Gateway and holds no checklist logic.
package gateway

import "time"

// Default endpoints and timeouts.
const (
	DefaultEndpoint        = "http://localhost:3000/"
	DefaultMessageEndpoint = "https://uselessfacts.jsph.pl/random.json"
	DefaultTimeout         = 10 * time.Second
	DefaultMessageTimeout  = 5 * time.Second
	DefaultUserAgent       = "waypoint"
	DefaultMaxBodyLogSize  = 2048
)

// Config defines how the gateway reaches its two services.
type Config struct {
	// Endpoint is the GraphQL backend URL.
	Endpoint string
	// MessageEndpoint is the random-fact URL used for the closing message.
	MessageEndpoint string
	// Timeout bounds each backend request.
	Timeout time.Duration
	// MessageTimeout bounds each closing message request.
	MessageTimeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// Verbose logs request and response bodies at debug level.
	Verbose bool
	// MaxBodyLogSize truncates logged bodies to this many bytes. Zero selects
	// DefaultMaxBodyLogSize; a negative value disables truncation.
	MaxBodyLogSize int
}

// withDefaults fills zero fields with package defaults.
func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.MessageEndpoint == "" {
		c.MessageEndpoint = DefaultMessageEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MessageTimeout <= 0 {
		c.MessageTimeout = DefaultMessageTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodyLogSize == 0 {
		c.MaxBodyLogSize = DefaultMaxBodyLogSize
	}
	return c
}
