package cli

import (
	"context"
	"fmt"

	"github.com/chainbell/chainbell/internal/relay"

	"github.com/urfave/cli/v3"
)

// inspectTransactionCommand returns a CLI command that runs the fetch,
// classify, notify path once for a single transaction hash and exits. It is
// the single-transaction test mode: exit code 0 means the alert was
// delivered, nonzero means fetching, classification or delivery failed.
//
// Usage example:
//
//	chainbell inspect --tx 0xabc123...
func inspectTransactionCommand(r relay.Service) *cli.Command {
	return &cli.Command{
		Name:        "inspect",
		Description: "Runs the notification pipeline once for a single transaction hash.",
		Usage:       "Fetches, classifies and notifies one transaction, then exits.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "tx",
				Usage:    "Transaction hash to inspect",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			hash := c.String("tx")

			if err := r.RelayOne(ctx, hash); err != nil {
				return fmt.Errorf("inspecting %s: %w", hash, err)
			}

			fmt.Fprintf(c.Writer, "notified for transaction %s\n", hash)
			return nil
		},
	}
}
