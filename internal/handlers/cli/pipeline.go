package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainbell/chainbell/internal/relay"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns a CLI command that starts the full monitoring
// pipeline: chain polling, address filtering and alert delivery.
//
// Usage example:
//
//	chainbell start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or SIGTERM).
func startPipelineCommand(r relay.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the monitoring pipeline including chain polling and alert delivery.",
		Usage:       "Initializes and runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := r.Start(ctx); err != nil {
				return err
			}
			defer r.Close()

			<-quit
			return nil
		},
	}
}
