package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvdis-go/internal/cli/command"
	"github.com/yndnr/kvdis-go/internal/infra/buildinfo"
)

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, buildinfo.String(c.App.Name))
	}

	if err := command.App().Run(os.Args); err != nil {
		if !errors.Is(err, command.ErrServerError) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
