// Package config loads and validates quadvoice configuration from TOML.
package config
