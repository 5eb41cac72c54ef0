// Package main provides the entry point for kvdis-server.
//
// kvdis-server serves an in-memory string dictionary over a newline
// delimited TCP protocol. Configuration comes from defaults, an optional
// YAML file, KVDIS_* environment variables and command-line flags, in that
// order of precedence.
package main
