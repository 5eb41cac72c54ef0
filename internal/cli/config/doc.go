// Package config provides the kvdis-cli configuration.
//
// Settings come from ~/.kvdis/cli.yaml when present, then KVDIS_CLI_*
// environment variables, then command-line flags.
package config
