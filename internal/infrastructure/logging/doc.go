// Package logging provides structured logging for PlantLink.
//
// It is a thin wrapper around log/slog configured from the logging
// section of config.yaml: JSON or text output, level filtering, and
// default service/node attributes. Components that only need to emit
// warnings accept their own narrow Logger interfaces, which this type
// satisfies.
package logging
