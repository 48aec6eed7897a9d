// Package config loads, normalizes, and validates almoner configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DONOR_API_URL. The Config type centralizes every knob the CLI needs,
// allowing the API endpoint, operator identity, and journal location to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
