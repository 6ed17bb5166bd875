package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainbell/chainbell/internal/chainpoll"
	"github.com/chainbell/chainbell/internal/pkg/types"

	"github.com/redis/go-redis/v9"
)

// checkpointKeyPrefix namespaces every cursor key.
const checkpointKeyPrefix = "chainpoll"

// checkpointKey builds the key holding the latest relayed block height for a
// network: "chainpoll:checkpoint:<network>".
func checkpointKey(network string) string {
	return fmt.Sprintf("%s:checkpoint:%s", checkpointKeyPrefix, network)
}

// SaveCheckpoint persists the most recent fully relayed block height for the
// given network, with no expiration, so a restart resumes from the next block
// instead of the chain head.
func (c *client) SaveCheckpoint(ctx context.Context, network string, height types.Hex) error {
	return c.conn.Set(ctx, checkpointKey(network), string(height), 0).Err()
}

// LoadLatestCheckpoint retrieves the saved cursor for the given network. A
// missing cursor maps to chainpoll.ErrNoCheckpointFound.
func (c *client) LoadLatestCheckpoint(ctx context.Context, network string) (types.Hex, error) {
	val, err := c.conn.Get(ctx, checkpointKey(network)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = chainpoll.ErrNoCheckpointFound
		}

		return "", err
	}

	return types.HexFromString(val)
}

var _ chainpoll.CheckpointStorage = new(client)
