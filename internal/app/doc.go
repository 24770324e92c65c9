// Package app bootstraps the command-line binaries.
//
// NewApplication loads the configuration, applies command-line overrides,
// initializes the logger and telemetry, and creates the working
// directories. The step constructors wire the services to that shared
// infrastructure, and Run executes them under a signal-aware context.
package app
