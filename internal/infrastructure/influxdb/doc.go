// Package influxdb mirrors a node's published telemetry into InfluxDB v2.
//
// The mirror is optional (influxdb.enabled in config.yaml) and strictly
// best-effort: the broker remains the system of record, and the uplink
// loop never blocks on the mirror. Readings and connection-state
// transitions are written as batched, non-blocking points.
package influxdb
