// Package telemetry records warehouse device readings to InfluxDB.
//
// Conveyor status text, infrared sensor values, AGV positions and
// operation lifecycle events are written as time-series points so
// operators can inspect equipment behaviour around an incident.
//
// Telemetry is optional (config-gated) and strictly best-effort: writes
// are batched and non-blocking, and write failures surface only through
// the error callback. The coordinator never waits on telemetry.
package telemetry
