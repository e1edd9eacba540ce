// Package config loads, normalizes, and validates the TOML configuration for
// vidscribe. Loading follows a fixed precedence: an explicit --config path,
// then ~/.config/vidscribe/config.toml, then vidscribe.toml in the working
// directory. Defaults apply first so a partial file only overrides what it
// names; path fields are tilde-expanded before use.
package config
