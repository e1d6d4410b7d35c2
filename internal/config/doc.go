// Package config loads linestate settings.
//
// Settings come from three layers, later ones winning: built-in defaults, a
// configuration file and LINESTATE_* environment variables. The file format
// follows the extension: .toml files are decoded with go-toml, .yaml and
// .yml files with yaml.v3.
//
// Example TOML:
//
//	watch = true
//
//	[log]
//	level = "debug"
//
//	[cache]
//	ttl = "1m"
//	cleanup_interval = "5m"
//
//	[[grammars]]
//	language = "ini"
//	script = "grammars/ini.lua"
//	extensions = [".ini", ".cfg"]
//	timeout = "100ms"
//
// Relative script paths are resolved against the configuration file.
package config
