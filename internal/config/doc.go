// Package config provides configuration management for the retail data pipeline.
// It handles loading configuration from multiple sources, validation, and the
// directory layout every pipeline component works against.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), prefixed RETAIL_
//	2. A .env file in the working directory
//	3. An optional YAML file passed to Load
//	4. Default values (lowest priority)
//
// # Environment Variables
//
//	RETAIL_PIPELINE_PROJECT_ROOT=/srv/retail
//	RETAIL_PIPELINE_SKIP_VALIDATION=false
//	RETAIL_PIPELINE_STRICT_GATE=true
//	RETAIL_QUALITY_GATE_THRESHOLD=80
//	RETAIL_LOGGING_LEVEL=debug
//	RETAIL_SERVER_PORT=8080
//
// # Path Management
//
// Paths are derived from the explicit project root, never discovered:
//
//	paths := config.NewPaths("/srv/retail")
//	raw := paths.GetRawPath(config.RawStoresFile)
//
// # Validation
//
// Struct constraints are declared with validate tags and checked by
// go-playground/validator at load time: thresholds stay within 0..100,
// the bounding box is ordered, ports are in range.
//
// # Testing
//
// Use ForRoot(t.TempDir()) to get a fully resolved default configuration
// without touching the environment.
package config
