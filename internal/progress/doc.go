// Package progress reports job and step milestones while analyses run.
// The Hub buffers emitted events and delivers them in batches on a
// background goroutine; Prometheus collectors and structured logs ship as
// the built-in consumers under sinks.
package progress
