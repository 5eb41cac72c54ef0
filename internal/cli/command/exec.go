package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/kvdis-go/internal/cli/connection"
	"github.com/yndnr/kvdis-go/internal/cli/output"
	"github.com/yndnr/kvdis-go/internal/cli/repl"
)

func rootAction(c *cli.Context) error {
	cfg := ConfigFrom(c)

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format)

	client := connection.NewClient(cfg.Server, cfg.Timeout)
	defer client.Close()

	if c.Args().Present() {
		return oneShot(c, client, formatter, strings.Join(c.Args().Slice(), " "))
	}

	r := repl.New(client,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(repl.NewHistory(cfg.History)),
		repl.WithFormatter(formatter),
	)
	return r.Run(c.Context)
}

func oneShot(c *cli.Context, client *connection.Client, f output.Formatter, line string) error {
	reply, err := client.Execute(c.Context, line)
	if err != nil {
		return err
	}

	r := output.NewReply(line, reply)
	if err := f.Format(c.App.Writer, r); err != nil {
		return err
	}
	if r.Error {
		return ErrServerError
	}
	return nil
}
