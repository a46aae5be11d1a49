// Package config loads and validates Spool's TOML configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/spool/config.toml, then a spool.toml in the working directory.
// Missing files are not an error: defaults apply, so a bare installation can
// encode without writing any configuration at all. Loading normalizes every
// path field to an absolute path and verifies cross-field constraints before
// the rest of the program sees the values.
package config
