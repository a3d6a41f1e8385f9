// Package config loads, normalizes, and validates musicmerge configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the MUSICMERGE_DATA_DIR
// environment fallback for the game data directory. The Config type gathers
// every knob the CLI needs so the merge, history and logging packages see
// sanitized paths and canonical enum values.
package config
