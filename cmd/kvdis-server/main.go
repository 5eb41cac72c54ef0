package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvdis-go/internal/infra/buildinfo"
)

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, buildinfo.String(c.App.Name))
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "kvdis-server",
		Usage:   "in-memory key-value server with a line protocol",
		Version: buildinfo.Get().Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"KVDIS_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "line protocol listen address (server.addr)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "line protocol port, keeping the configured host",
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "enable the HTTP side-car on this address",
			},
			&cli.StringFlag{
				Name:  "snapshot",
				Usage: "snapshot file path (storage.snapshot_path)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (log.level)",
			},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if c.IsSet("port") && (port <= 0 || port > 65535) {
				return fmt.Errorf("invalid port %d", port)
			}
			return run(c.Context, options{
				configFile: c.String("config"),
				overrides:  flagOverrides(c),
				port:       port,
			})
		},
	}
}

// flagOverrides turns explicitly set flags into configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)

	if c.IsSet("addr") {
		overrides["server.addr"] = c.String("addr")
	}
	if c.IsSet("http-addr") {
		overrides["http.enabled"] = true
		overrides["http.addr"] = c.String("http-addr")
	}
	if c.IsSet("snapshot") {
		overrides["storage.snapshot_path"] = c.String("snapshot")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}

	return overrides
}
