// Package config loads, validates, and normalizes Pulpit's TOML
// configuration.
//
// Defaults live in defaults.go, environment fallbacks and path expansion in
// normalize.go, and invariant checks in validate.go. Load resolves the config
// path (explicit flag, ~/.config/pulpit/config.toml, then ./pulpit.toml),
// reads a .env file for secret fallbacks, and returns a fully normalized
// Config ready for the daemon and CLI.
package config
