// Package config provides centralized configuration management for hkpulse.
// It loads settings from several sources, validates them and resolves every
// file location used by the pipeline.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority), including a .env file
//  2. A YAML file: $PULSE_CONFIG_FILE, config.yaml or configs/config.yaml
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PULSE_<SECTION>_<KEY>:
//
//	PULSE_LOGGING_LEVEL=debug
//	PULSE_PATHS_DATA_DIR=/var/lib/hkpulse
//	PULSE_PROVIDER_REQUESTS_PER_SECOND=1
//	PULSE_CHART_START_DATE=2019-01-01
//
// # Path Management
//
// Paths resolves the five acquisition files in the data directory and the
// scoring and chart outputs in the output directory:
//
//	paths := cfg.ResolvePaths()
//	if err := paths.EnsureDirectories(); err != nil {
//	    return err
//	}
package config
