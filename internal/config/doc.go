// Package config provides centralized configuration management for the
// compliance checker. It loads configuration from several sources, validates
// it, and exposes a typed Config to the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The file is taken from COMPLIANCE_CONFIG_FILE, or the first of
// config.yaml, configs/config.yaml and ../configs/config.yaml that exists.
//
// # Environment Variables
//
// All environment variables follow the pattern COMPLIANCE_<SECTION>_<KEY>:
//
//	COMPLIANCE_SERVER_PORT=8080
//	COMPLIANCE_UPLOAD_MAX_BYTES=33554432
//	COMPLIANCE_CHECK_DEFAULT_THRESHOLD=42
//	COMPLIANCE_CHECK_RESULT_TTL=15m
//	COMPLIANCE_LOGGING_LEVEL=debug
//	COMPLIANCE_OBSERVABILITY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Load rejects out-of-range ports and timeouts, a negative default threshold,
// an unknown default direction or blank policy, and unknown log outputs.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default() or config.LoadFile with a temporary YAML file.
package config
