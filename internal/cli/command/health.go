package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"
)

// HealthCommand queries the HTTP side-car's /health endpoint.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health through the HTTP side-car",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "http",
				Usage: "side-car address",
				Value: "127.0.0.1:7780",
			},
		},
		Action: healthAction,
	}
}

type healthEnvelope struct {
	Data struct {
		Status  string `json:"status"`
		Time    string `json:"time"`
		Version string `json:"version"`
	} `json:"data"`
}

func healthAction(c *cli.Context) error {
	cfg := ConfigFrom(c)

	ctx, cancel := context.WithTimeout(c.Context, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+c.String("http")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}

	var env healthEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "status:  %s\ntime:    %s\nversion: %s\n",
		env.Data.Status, env.Data.Time, env.Data.Version)
	return nil
}
