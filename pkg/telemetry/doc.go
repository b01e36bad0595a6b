// Package telemetry provides structured logging (zerolog) and Prometheus
// metrics for the planner. Metrics methods are nil-safe so the engine can
// run with metrics disabled.
package telemetry
