// Package config loads, normalizes, and validates job manager configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and canonicalizes cluster endpoint URLs. The
// Config type centralizes every knob the CLI needs, so commands receive
// sanitized paths and endpoints in one pass.
package config
