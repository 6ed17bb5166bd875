package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chainbell/chainbell/internal/pkg/types"
)

// ErrAlreadyNotified indicates that an alert for the same transaction and
// direction was already claimed by a previous delivery attempt.
var ErrAlreadyNotified = errors.New("notification already sent")

// DeliveryGuard records which alerts have been claimed for delivery, keyed by
// transaction hash and direction. Claims are taken before the first send
// attempt and are never released on failure, which is what bounds delivery to
// at most once per alert even across reprocessed block ranges.
//
// Durable implementations (e.g. Redis) extend the guarantee across restarts;
// the in-memory implementation bounds it to the lifetime of the process.
type DeliveryGuard interface {
	// ClaimDelivery attempts to claim the alert identified by key. It returns
	// ErrAlreadyNotified when the alert was claimed before, nil when the claim
	// was newly acquired. The claim expires after ttl where the backing store
	// supports expiry.
	ClaimDelivery(ctx context.Context, key string, ttl time.Duration) error
}

// nopDeliveryGuard claims every alert unconditionally, so nothing is ever
// deduplicated. Used when no guard is configured.
type nopDeliveryGuard struct{}

var _ DeliveryGuard = (*nopDeliveryGuard)(nil)

func (nopDeliveryGuard) ClaimDelivery(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

// MemoryDeliveryGuard is an in-process DeliveryGuard backed by a set. It is
// safe for concurrent use and ignores ttl, holding claims for the lifetime of
// the process.
type MemoryDeliveryGuard struct {
	mu      sync.Mutex
	claimed types.Set[string]
}

var _ DeliveryGuard = (*MemoryDeliveryGuard)(nil)

// NewMemoryDeliveryGuard creates an empty in-memory delivery guard.
func NewMemoryDeliveryGuard() *MemoryDeliveryGuard {
	return &MemoryDeliveryGuard{claimed: types.NewSet[string]()}
}

func (g *MemoryDeliveryGuard) ClaimDelivery(ctx context.Context, key string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.claimed[key]; ok {
		return ErrAlreadyNotified
	}

	g.claimed.Add(key)
	return nil
}
