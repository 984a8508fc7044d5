package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for a PlantLink node.
// All configuration is loaded from YAML and can be overridden by
// environment variables; there is no other source of settings.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Network   NetworkConfig   `yaml:"network"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Devices   []DeviceConfig  `yaml:"devices"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	// ID is the node designation used in topic names (e.g. "greenA").
	ID string `yaml:"id"`

	// Name is the human-readable node name.
	Name string `yaml:"name"`
}

// NetworkConfig describes how the node associates with its network.
type NetworkConfig struct {
	// Mode selects the associator: "probe" (OS-managed link, verify
	// reachability) or "nmcli" (join the named Wi-Fi network).
	Mode string `yaml:"mode"`

	// Name is the network identity (for nmcli, the SSID).
	Name string `yaml:"name"`

	// Secret is the shared secret. Empty for open networks.
	Secret string `yaml:"secret"`

	// ProbeTarget is the "host:port" the probe associator dials. Empty
	// means the broker address.
	ProbeTarget string `yaml:"probe_target"`

	// RetryLimit bounds association retries: 0-100, 0 = unlimited.
	RetryLimit int `yaml:"retry_limit"`
}

// MQTTConfig contains broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`
}

// MQTTBrokerConfig contains broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains broker authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TelemetryConfig controls the publish cadence.
type TelemetryConfig struct {
	// Interval is the number of seconds between telemetry publishes.
	Interval int `yaml:"interval"`

	// StateTopic is the channel telemetry is published on. Empty means
	// the conventional discovery state topic for the node ID.
	StateTopic string `yaml:"state_topic"`
}

// DeviceConfig describes one logical sensor announced via discovery.
// Field names follow the discovery document keys.
type DeviceConfig struct {
	DeviceClass        string `yaml:"device_class"`
	ExpiresAfter       uint   `yaml:"expires_after"`
	Name               string `yaml:"name"`
	StateTopic         string `yaml:"state_topic"`
	UniqueID           string `yaml:"unique_id"`
	UnitOfMeasurement  string `yaml:"unit_of_measurement"`
	ValueTemplate      string `yaml:"value_template"`
	ConfigurationTopic string `yaml:"configuration_topic"`
}

// DatabaseConfig contains SQLite settings for the connection-event log.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains telemetry-mirror settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern PLANTLINK_SECTION_KEY, e.g.
// PLANTLINK_MQTT_PASSWORD, PLANTLINK_NETWORK_SECRET.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			ID: "plantlink-001",
		},
		Network: NetworkConfig{
			Mode:       "probe",
			RetryLimit: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
		},
		Telemetry: TelemetryConfig{
			Interval: 300,
		},
		Database: DatabaseConfig{
			Path:        "./data/plantlink.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides. Secrets are
// the main use: keeping them out of the YAML file keeps them out of
// configuration backups.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLANTLINK_NETWORK_NAME"); v != "" {
		cfg.Network.Name = v
	}
	if v := os.Getenv("PLANTLINK_NETWORK_SECRET"); v != "" {
		cfg.Network.Secret = v
	}
	if v := os.Getenv("PLANTLINK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PLANTLINK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PLANTLINK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("PLANTLINK_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PLANTLINK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Node.ID == "" {
		errs = append(errs, "node.id is required")
	}

	switch c.Network.Mode {
	case "probe":
		// Probe target defaults to the broker address.
	case "nmcli":
		if c.Network.Name == "" {
			errs = append(errs, "network.name is required for nmcli mode")
		}
	default:
		errs = append(errs, fmt.Sprintf("network.mode %q must be probe or nmcli", c.Network.Mode))
	}
	if c.Network.RetryLimit < 0 || c.Network.RetryLimit > 100 {
		errs = append(errs, "network.retry_limit must be between 0 and 100")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Telemetry.Interval < 1 {
		errs = append(errs, "telemetry.interval must be at least 1 second")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	for i, dev := range c.Devices {
		if dev.UniqueID == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].unique_id is required", i))
		}
		if dev.ConfigurationTopic == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].configuration_topic is required", i))
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ProbeTarget returns the address the probe associator should dial.
func (c *Config) ProbeTarget() string {
	if c.Network.ProbeTarget != "" {
		return c.Network.ProbeTarget
	}
	return fmt.Sprintf("%s:%d", c.MQTT.Broker.Host, c.MQTT.Broker.Port)
}
