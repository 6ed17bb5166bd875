package chainpoll

import (
	"context"
	"errors"
	"sync"

	"github.com/chainbell/chainbell/internal/pkg/types"
)

// ErrNoCheckpointFound is returned by LoadLatestCheckpoint when no checkpoint
// has been saved yet for the requested network.
var ErrNoCheckpointFound = errors.New("no checkpoint found for network")

// CheckpointStorage persists and retrieves the latest processed block height
// (the cursor) for each blockchain network. The poller only advances past a
// block once its consumer has saved a checkpoint for it, so reprocessing the
// same range after a restart never yields already-handled blocks.
type CheckpointStorage interface {
	// SaveCheckpoint records the given block height as the latest checkpoint
	// for the specified network, overwriting any previous value.
	SaveCheckpoint(ctx context.Context, network string, height types.Hex) error

	// LoadLatestCheckpoint returns the most recent block height saved for the
	// specified network, or ErrNoCheckpointFound when none exists.
	LoadLatestCheckpoint(ctx context.Context, network string) (types.Hex, error)
}

// nopCheckpoint is the default CheckpointStorage: it stores nothing and always
// reports no checkpoint, which makes every run start from the chain head.
type nopCheckpoint struct{}

var _ CheckpointStorage = nopCheckpoint{}

func (nopCheckpoint) SaveCheckpoint(ctx context.Context, network string, height types.Hex) error {
	return nil
}

func (nopCheckpoint) LoadLatestCheckpoint(ctx context.Context, network string) (types.Hex, error) {
	return "", ErrNoCheckpointFound
}

// MemoryCheckpoint is an in-process CheckpointStorage. It keeps the cursor for
// the lifetime of the process only: a restart starts over from the chain head.
// Useful for single-instance runs without external storage.
type MemoryCheckpoint struct {
	mu      sync.RWMutex
	cursors map[string]types.Hex
}

var _ CheckpointStorage = (*MemoryCheckpoint)(nil)

// NewMemoryCheckpoint creates an empty in-memory checkpoint store.
func NewMemoryCheckpoint() *MemoryCheckpoint {
	return &MemoryCheckpoint{cursors: make(map[string]types.Hex)}
}

// SaveCheckpoint records the cursor for the given network.
func (m *MemoryCheckpoint) SaveCheckpoint(ctx context.Context, network string, height types.Hex) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cursors[network] = height
	return nil
}

// LoadLatestCheckpoint returns the cursor recorded for the given network.
func (m *MemoryCheckpoint) LoadLatestCheckpoint(ctx context.Context, network string) (types.Hex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	height, ok := m.cursors[network]
	if !ok {
		return "", ErrNoCheckpointFound
	}

	return height, nil
}
