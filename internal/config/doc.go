// Package config loads, normalizes, and validates vidgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BASE_URL and NTFY_TOPIC. The Config type centralizes every knob the worker
// and CLI need, so backgrounds, work artifacts, renders, and external tool
// names are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
