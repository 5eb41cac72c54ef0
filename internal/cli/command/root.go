package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvdis-go/internal/cli/config"
	"github.com/yndnr/kvdis-go/internal/infra/buildinfo"
)

// ErrServerError is returned when a one-shot command got an error reply.
// The reply has already been printed.
var ErrServerError = errors.New("server replied with an error")

const configKey = "config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "kvdis-cli",
		Usage:                "kvdis command-line client",
		UsageText:            "kvdis-cli [global options] [VERB ARGS...]\n   kvdis-cli [global options] health",
		Version:              buildinfo.Get().Version,
		Flags:                globalFlags(),
		Commands:             []*cli.Command{HealthCommand()},
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Before:               loadConfig,
		Action:               rootAction,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	def := config.Default()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "kvdis server address",
			Value:   def.Server,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "dial and reply timeout",
			Value:   def.Timeout,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "reply format: text, json, yaml",
			Value:   def.Output,
		},
	}
}

// loadConfig merges the config file, KVDIS_CLI_* and explicitly set flags.
func loadConfig(c *cli.Context) error {
	overrides := make(map[string]any)
	for _, name := range []string{"server", "output"} {
		if c.IsSet(name) {
			overrides[name] = c.String(name)
		}
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout").String()
	}

	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// ConfigFrom returns the configuration loaded by the Before hook.
func ConfigFrom(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[configKey].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}
