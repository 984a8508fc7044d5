package main

import (
	"context"
	"time"

	"github.com/plantlink/plantlink-core/internal/conn"
	"github.com/plantlink/plantlink-core/internal/history"
	"github.com/plantlink/plantlink-core/internal/infrastructure/config"
	"github.com/plantlink/plantlink-core/internal/infrastructure/influxdb"
	"github.com/plantlink/plantlink-core/internal/infrastructure/logging"
	"github.com/plantlink/plantlink-core/internal/publish"
)

// checkInterval is how often the control loop evaluates connectivity and
// drives the session's keepalive. Short relative to the telemetry
// interval so a dead link is usually repaired before the next publish.
const checkInterval = 15 * time.Second

// node ties the connection manager, publisher, and stores together into
// the daemon's control loop.
type node struct {
	cfg       *config.Config
	manager   *conn.Manager
	publisher *publish.Publisher
	events    *history.Repository
	influx    *influxdb.Client
	log       *logging.Logger

	stateTopic string

	// lastState is the last observed connection state; transitions are
	// recorded, steady states are not.
	lastState conn.State

	// announced is set once the retained discovery documents have been
	// published. Retained messages survive reconnects, so once is enough.
	announced bool
}

func newNode(cfg *config.Config, manager *conn.Manager, events *history.Repository, influx *influxdb.Client, log *logging.Logger) *node {
	return &node{
		cfg:        cfg,
		manager:    manager,
		publisher:  publish.NewPublisher(manager),
		events:     events,
		influx:     influx,
		log:        log,
		stateTopic: stateTopic(cfg),
		lastState:  conn.StateNotStarted,
	}
}

// loop runs until the context is cancelled. It establishes the
// connection, then alternates between connectivity checks and telemetry
// publishes on independent tickers.
func (n *node) loop(ctx context.Context) {
	n.observe(ctx, n.manager.Begin())

	check := time.NewTicker(checkInterval)
	defer check.Stop()
	telemetry := time.NewTicker(time.Duration(n.cfg.Telemetry.Interval) * time.Second)
	defer telemetry.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-check.C:
			n.manager.Poll()
			n.observe(ctx, n.check())

		case <-telemetry.C:
			n.publishTelemetry()
		}
	}
}

// check evaluates connectivity. StateNotStarted means the initial Begin
// never succeeded, so the whole bring-up is retried rather than the
// narrower reconnect path.
func (n *node) check() conn.State {
	state := n.manager.CheckConnection()
	if state == conn.StateNotStarted {
		state = n.manager.Begin()
	}
	return state
}

// observe handles one connection-state reading: transitions are logged,
// recorded in the event log, and mirrored to InfluxDB. Reaching
// StateConnected for the first time triggers the discovery announcement.
func (n *node) observe(ctx context.Context, state conn.State) {
	if state != n.lastState {
		brokerErr := conn.BrokerErrNone
		if state == conn.StateBrokerError {
			brokerErr = n.manager.BrokerError()
		}

		n.log.Info("connection state changed",
			"from", n.lastState.String(),
			"to", state.String(),
			"broker_error", brokerErr.String(),
		)
		if err := n.events.Record(ctx, state, brokerErr); err != nil {
			n.log.Warn("recording connection event failed", "error", err)
		}
		if n.influx != nil {
			n.influx.WriteConnectionState(n.cfg.Node.ID, state.String(), int(brokerErr))
		}
		n.lastState = state
	}

	if state == conn.StateConnected && !n.announced {
		n.announce()
	}
}

// announce publishes the retained discovery document for every
// configured device. Announcement is retried on the next connected
// observation if any publish fails.
func (n *node) announce() {
	ok := true
	for _, dev := range n.cfg.Devices {
		desc := descriptorFromConfig(dev, n.stateTopic)
		if err := n.publisher.PublishDeviceConfig(desc); err != nil {
			n.log.Warn("discovery announcement failed",
				"device", desc.UniqueID,
				"error", err,
			)
			ok = false
		}
	}
	if ok {
		n.announced = true
		n.log.Info("discovery announcements published", "devices", len(n.cfg.Devices))
	}
}

// publishTelemetry gathers host readings, publishes them as one
// document, and mirrors each reading to InfluxDB.
func (n *node) publishTelemetry() {
	readings, err := readHostMetrics()
	if err != nil {
		n.log.Warn("gathering host metrics failed", "error", err)
		return
	}

	doc := publish.NewDocument()
	for _, r := range readings {
		doc.Set(r.Key, r.Value)
	}

	if err := n.publisher.PublishTelemetry(doc, n.stateTopic); err != nil {
		n.log.Warn("telemetry publish failed", "topic", n.stateTopic, "error", err)
		return
	}
	n.log.Debug("telemetry published", "topic", n.stateTopic, "readings", len(readings))

	if n.influx != nil {
		for _, r := range readings {
			n.influx.WriteReading(n.cfg.Node.ID, r.Key, r.Value)
		}
	}
}
