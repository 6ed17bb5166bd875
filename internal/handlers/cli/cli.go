package cli

import (
	"context"
	"os"

	"github.com/chainbell/chainbell/internal/relay"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the chainbell CLI application.
//
// It registers all available commands:
//
//   - `start`: runs the monitoring pipeline until interrupted. This is also
//     the default command, so a bare `chainbell` invocation starts the loop.
//   - `inspect`: runs fetch, classify, notify once for a single transaction.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - r: the relay service implementation used by both commands.
func Run(ctx context.Context, r relay.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "chainbell",
		Description:           "Command-line interface for the chainbell address monitoring pipeline.",
		Usage:                 "chainbell [command] [flags]",
		DefaultCommand:        "start",
		Commands: []*cli.Command{
			startPipelineCommand(r),
			inspectTransactionCommand(r),
		},
	}

	return app.Run(ctx, os.Args)
}
