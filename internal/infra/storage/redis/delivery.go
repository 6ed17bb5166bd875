package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/chainbell/chainbell/internal/notify"
)

// deliveryKeyPrefix namespaces every delivery claim key.
const deliveryKeyPrefix = "notify"

// deliveryClaimKey builds the key marking an alert as claimed for delivery:
// "notify:delivered:<hash>:<direction>".
func deliveryClaimKey(alertKey string) string {
	return fmt.Sprintf("%s:delivered:%s", deliveryKeyPrefix, alertKey)
}

// ClaimDelivery atomically claims the alert via SETNX. A lost race or an
// existing claim both map to notify.ErrAlreadyNotified, which is what makes
// delivery at-most-once across processes and restarts.
func (c *client) ClaimDelivery(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := c.conn.SetNX(ctx, deliveryClaimKey(key), "1", ttl).Result()
	if err != nil {
		return err
	}

	if !ok {
		return notify.ErrAlreadyNotified
	}

	return nil
}

var _ notify.DeliveryGuard = new(client)
