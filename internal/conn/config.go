package conn

import "time"

// Retry policy constants.
const (
	// maxRetryLimit is the largest accepted association retry limit.
	maxRetryLimit = 100

	// retryBackoff is the fixed delay between failed association attempts.
	retryBackoff = 5 * time.Second
)

// Config holds everything a Manager needs to establish connectivity.
//
// It is constructed once during startup and passed in; there is no
// ambient process-wide configuration. The Set* methods on Manager may
// still mutate it afterwards, but changes only take effect on the next
// connect attempt.
type Config struct {
	// Network is the identity of the network to associate with.
	Network NetworkConfig

	// Broker is the message-broker address.
	Broker BrokerConfig

	// Auth are optional broker credentials. An empty Username means
	// anonymous access.
	Auth Credentials

	// RetryLimit bounds the association retry loop. Valid range is
	// [0, 100]; 0 means unlimited retries.
	RetryLimit int
}

// NetworkConfig identifies the network to join.
type NetworkConfig struct {
	// Name is the network identity (for Wi-Fi, the SSID). Required.
	Name string

	// Secret is the shared secret. Empty for open networks.
	Secret string
}

// BrokerConfig is the broker endpoint.
type BrokerConfig struct {
	Host string
	Port int
}

// credentials returns the configured credentials, or nil when the broker
// is anonymous.
func (c *Config) credentials() *Credentials {
	if c.Auth.Username == "" {
		return nil
	}
	creds := c.Auth
	return &creds
}
