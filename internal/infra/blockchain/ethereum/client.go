// Package ethereum adapts an Ethereum-compatible node, reached over JSON-RPC,
// to the poller's Blockchain port and the classifier's TokenDirectory port.
package ethereum

import (
	"time"

	"github.com/chainbell/chainbell/internal/chainpoll"
	"github.com/chainbell/chainbell/internal/pkg/transport/jsonrpc"
)

// averageBlockTime is the expected time between Ethereum mainnet blocks and
// the default polling cadence.
const averageBlockTime = 12 * time.Second

// client talks to an Ethereum node via a JSON-RPC connection.
type client struct {
	conn         jsonrpc.Client
	pollInterval time.Duration
}

var _ chainpoll.Blockchain = (*client)(nil)

type config struct {
	pollInterval time.Duration
}

// Option customizes the client created by NewClient.
type Option func(*config)

// WithPollInterval overrides the cadence at which the node is polled for new
// blocks (default 12s, one mainnet block time).
func WithPollInterval(interval time.Duration) Option {
	return func(c *config) {
		c.pollInterval = interval
	}
}

// NewClient creates an Ethereum blockchain client on top of the provided
// JSON-RPC connection.
func NewClient(conn jsonrpc.Client, opts ...Option) *client {
	cfg := config{
		pollInterval: averageBlockTime,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		conn:         conn,
		pollInterval: cfg.pollInterval,
	}
}
