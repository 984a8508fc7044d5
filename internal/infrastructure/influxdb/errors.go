package influxdb

import "errors"

// Domain-specific errors for the telemetry mirror.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDisabled is returned by Connect when the mirror is disabled in
	// configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed is returned when the initial ping fails.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected is returned for operations on a closed client.
	ErrNotConnected = errors.New("influxdb: client not connected")
)
