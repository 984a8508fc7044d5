package influxdb

import (
	"context"
	"errors"
	"testing"

	"github.com/plantlink/plantlink-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(context.Background(), config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	cfg := config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:19999", // nothing listens here
		Token:   "test-token",
		Org:     "plantlink",
		Bucket:  "telemetry",
	}

	_, err := Connect(context.Background(), cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWriteReadingDisconnected(t *testing.T) {
	c := &Client{} // never connected

	// Must be a silent no-op, not a panic on the nil write API.
	c.WriteReading("greenA", "temp", 21.5)
	c.WriteConnectionState("greenA", "no_broker", 3)
}

func TestCloseDisconnected(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on disconnected client error = %v, want nil", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}
