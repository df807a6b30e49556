// Package logging builds the gateway's structured logger on log/slog.
//
// Every entry carries service and version fields. Components derive child
// loggers with With("component", ...). The logging section selects level
// (debug, info, warn, error), format (json or text) and stream (stdout or
// stderr):
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
//
// Credentials from the domoticz, mqtt and influxdb sections must never be
// logged.
package logging
