// PlantLink - Plant Telemetry Node
//
// This is the main entry point for the PlantLink node daemon. The daemon
// associates with the network, maintains a broker session, announces its
// sensors for discovery, and publishes telemetry on a fixed cadence.
// Connection-state transitions are recorded locally in SQLite and
// optionally mirrored to InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantlink/plantlink-core/internal/conn"
	"github.com/plantlink/plantlink-core/internal/history"
	"github.com/plantlink/plantlink-core/internal/infrastructure/config"
	"github.com/plantlink/plantlink-core/internal/infrastructure/database"
	"github.com/plantlink/plantlink-core/internal/infrastructure/influxdb"
	"github.com/plantlink/plantlink-core/internal/infrastructure/logging"
	"github.com/plantlink/plantlink-core/internal/infrastructure/mqtt"
	"github.com/plantlink/plantlink-core/internal/netassoc"
	"github.com/plantlink/plantlink-core/internal/publish"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// eventRetention is how long connection events are kept in the local log.
const eventRetention = 30 * 24 * time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting PlantLink",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, cfg.Node.ID)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", db.Path())

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connection-event log
	events := history.NewRepository(db.DB)
	if removed, pruneErr := events.Prune(ctx, eventRetention); pruneErr != nil {
		log.Warn("pruning connection events failed", "error", pruneErr)
	} else if removed > 0 {
		log.Info("pruned old connection events", "removed", removed)
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the connection manager: network associator + broker session
	associator := buildAssociator(cfg)
	session := mqtt.NewSession(mqtt.SessionConfig{
		ClientID: cfg.MQTT.Broker.ClientID,
		TLS:      cfg.MQTT.Broker.TLS,
		QoS:      cfg.MQTT.QoS,
	})
	session.SetLogger(log)

	manager := conn.NewOwned(connConfig(cfg), associator, session)
	manager.SetLogger(log)
	defer func() {
		log.Info("closing broker session")
		manager.Close()
	}()

	node := newNode(cfg, manager, events, influxClient, log)

	log.Info("initialisation complete, starting control loop",
		"node", cfg.Node.ID,
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"interval_s", cfg.Telemetry.Interval,
	)

	node.loop(ctx)

	log.Info("PlantLink stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PLANTLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PLANTLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildAssociator selects the network associator for the configured mode.
// Validation has already constrained mode to "probe" or "nmcli".
func buildAssociator(cfg *config.Config) conn.NetworkAssociator {
	if cfg.Network.Mode == "nmcli" {
		return netassoc.NewNMCLI()
	}
	return netassoc.NewProber(cfg.ProbeTarget())
}

// connConfig maps file configuration onto the connection manager's
// config. In probe mode an unset network name falls back to the probe
// target: the manager requires a non-empty network identity, and the
// target address is the identity a probe-mode node actually has.
func connConfig(cfg *config.Config) conn.Config {
	name := cfg.Network.Name
	if name == "" && cfg.Network.Mode == "probe" {
		name = cfg.ProbeTarget()
	}
	return conn.Config{
		Network: conn.NetworkConfig{
			Name:   name,
			Secret: cfg.Network.Secret,
		},
		Broker: conn.BrokerConfig{
			Host: cfg.MQTT.Broker.Host,
			Port: cfg.MQTT.Broker.Port,
		},
		Auth: conn.Credentials{
			Username: cfg.MQTT.Auth.Username,
			Password: cfg.MQTT.Auth.Password,
		},
		RetryLimit: cfg.Network.RetryLimit,
	}
}

// stateTopic returns the channel telemetry is published on: the
// configured override, or the conventional discovery state topic.
func stateTopic(cfg *config.Config) string {
	if cfg.Telemetry.StateTopic != "" {
		return cfg.Telemetry.StateTopic
	}
	return publish.Topics{}.SensorState(cfg.Node.ID)
}

// descriptorFromConfig maps one configured device onto a discovery
// descriptor. Empty state topics inherit the node's telemetry channel;
// an empty device class means "no class" and is omitted from the
// discovery document.
func descriptorFromConfig(dev config.DeviceConfig, defaultStateTopic string) publish.DeviceDescriptor {
	class := dev.DeviceClass
	if class == "" {
		class = publish.DeviceClassNone
	}
	topic := dev.StateTopic
	if topic == "" {
		topic = defaultStateTopic
	}
	return publish.DeviceDescriptor{
		DeviceClass:       class,
		ExpiresAfter:      dev.ExpiresAfter,
		Name:              dev.Name,
		StateTopic:        topic,
		UniqueID:          dev.UniqueID,
		UnitOfMeasurement: dev.UnitOfMeasurement,
		ValueTemplate:     dev.ValueTemplate,
		ConfigTopic:       dev.ConfigurationTopic,
	}
}
