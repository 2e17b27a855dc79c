// Package config loads YAML configuration for the graysqlite CLI.
//
// Configuration is read from a YAML file, merged over built-in
// defaults, then overridden by environment variables and finally
// validated. The library packages (sqlite, migrate) take plain structs
// and never read configuration themselves.
//
// # File format
//
//	database:
//	  path: "./data/app.db"
//	  wal_mode: true
//	  busy_timeout: 5
//	  foreign_keys: true
//	migrations:
//	  dir: "./migrations"
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "json"   # json, text
//	  output: "stdout" # stdout, stderr
//
// # Environment overrides
//
//	GRAYSQLITE_DB_PATH        overrides database.path
//	GRAYSQLITE_MIGRATIONS_DIR overrides migrations.dir
//	GRAYSQLITE_LOG_LEVEL      overrides logging.level
package config
