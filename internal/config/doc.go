// Package config loads runtime configuration for the AccountKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config / -c.
//  3. Command-line flags, which override earlier values when set explicitly.
//
// # JSON schema
//
// Durations use timex.Duration, so values may be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "data_dir": "/home/me/.config/accountkeeper",
//	  "log_level": "debug",
//	  "backup_keep": 5,
//	  "http": {"timeout": "30s", "failure_threshold": 3},
//	  "proxy": {"enabled": true, "url": "http://127.0.0.1:7890"},
//	  "mirror": {"enabled": true, "bucket": "keeper-backups", "region": "eu-central-1"}
//	}
//
// Keys missing from the file keep their default value.
package config
