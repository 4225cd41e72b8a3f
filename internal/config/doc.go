// Package config loads runtime configuration for the secure notes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   data directory
//	-i int      auto-save interval (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "data_dir": "/home/me/.config/secure_notes",
//	  "auto_save_interval": "2s",
//	  "log_level": "info"
//	}
package config
