package chainpoll

import (
	"context"

	"github.com/chainbell/chainbell/internal/pkg/types"

	"github.com/stretchr/testify/mock"
)

// blockchainMock is a testify mock for the Blockchain port.
type blockchainMock struct {
	mock.Mock
}

func (m *blockchainMock) FetchBlockByHeight(ctx context.Context, height types.Hex) (Block, error) {
	args := m.Called(ctx, height)
	return args.Get(0).(Block), args.Error(1)
}

func (m *blockchainMock) Subscribe(ctx context.Context, fromHeight types.Hex) (<-chan BlockchainEvent, error) {
	args := m.Called(ctx, fromHeight)

	ch, _ := args.Get(0).(<-chan BlockchainEvent)
	return ch, args.Error(1)
}

// checkpointStorageMock is a testify mock for the CheckpointStorage port.
type checkpointStorageMock struct {
	mock.Mock
}

func (m *checkpointStorageMock) SaveCheckpoint(ctx context.Context, network string, height types.Hex) error {
	args := m.Called(ctx, network, height)
	return args.Error(0)
}

func (m *checkpointStorageMock) LoadLatestCheckpoint(ctx context.Context, network string) (types.Hex, error) {
	args := m.Called(ctx, network)
	return args.Get(0).(types.Hex), args.Error(1)
}

// passthroughRetry is a retry.Retry that executes the operation exactly once.
type passthroughRetry struct{}

func (passthroughRetry) Execute(ctx context.Context, operation func() error) error {
	return operation()
}
