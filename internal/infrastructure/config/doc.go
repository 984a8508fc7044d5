// Package config loads and validates PlantLink node configuration.
//
// Configuration comes from one YAML file plus environment variable
// overrides for secrets (network secret, broker password, InfluxDB
// token). The loaded Config is constructed once during startup and
// passed to the components that need it; nothing reads configuration
// ambiently after startup.
package config
