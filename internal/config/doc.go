// Package config loads, normalizes, and validates podqueue configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the PODQUEUE_DATA_DIR environment
// override. The Config type centralizes every knob the CLI and HTTP server
// need so the queue database, downloaded media, and log locations are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
