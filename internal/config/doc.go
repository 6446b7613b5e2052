// Package config loads, normalizes, and validates Lightbox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the LIGHTBOX_SOURCE environment
// override for the item listing. The Config type centralizes every knob the
// pipeline collaborators and CLI need so the listing source, fetch limits,
// filter intensity, and simulated viewport are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
