// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB metrics sinks, the MQTT telemetry publisher and
// the CSV data log. These packages depend only on the interfaces and types
// defined in the core packages.
package infra
