package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteReading mirrors one telemetry reading to InfluxDB.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Calling on a closed or never-connected client is a no-op, matching the
// silent-drop contract of the publish path it shadows.
//
// Example:
//
//	client.WriteReading("greenA", "temp", 21.5)
//	client.WriteReading("greenA", "smst1", 43)
func (c *Client) WriteReading(nodeID string, field string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"telemetry",
		map[string]string{
			"node_id": nodeID,
			"field":   field,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteConnectionState mirrors a connection-state transition, letting
// dashboards correlate telemetry gaps with uplink trouble.
func (c *Client) WriteConnectionState(nodeID string, state string, brokerError int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"connection_state",
		map[string]string{
			"node_id": nodeID,
			"state":   state,
		},
		map[string]interface{}{
			"broker_error": brokerError,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
