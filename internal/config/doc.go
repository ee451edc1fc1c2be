// Package config loads, normalizes, and validates checklist configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CHECKLIST_API_TOKEN. The Config type centralizes every knob the daemon and
// CLI need: where the database lives, where logs, the RPC socket, the pid file
// and the instance lock are written, and whether the HTTP API is exposed.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
