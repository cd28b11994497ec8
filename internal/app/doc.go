// Package app provides startup and shutdown for the stage commands.
//
// Every command follows the same flow:
//
//	1. Load configuration from the YAML file and environment
//	2. Initialize logging and telemetry
//	3. Run one operation under a signal-aware context with a fresh run ID
//	4. Flush metrics and traces
//
// NewCommand wraps that flow in a cobra command so each cmd/<stage>/main.go
// only declares its flags and the steps it runs.
package app
