// Package chainpoll watches blockchain networks for new blocks. It subscribes
// to each registered network, resumes from the last checkpointed height,
// re-fetches blocks whose retrieval failed, and emits observed blocks in chain
// order on a channel for downstream processing.
package chainpoll

import (
	"context"
	"errors"
	"sync"

	"github.com/chainbell/chainbell/internal/pkg/logger"
	"github.com/chainbell/chainbell/internal/pkg/resilience/retry"
	"github.com/chainbell/chainbell/internal/pkg/x/chflow"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

const (
	dispatchFailureChannelBufferSize = 5
	retryFailureChannelBufferSize    = 5
	observedBlockChannelBufferSize   = 10
)

// Service is the poller lifecycle entrypoint.
type Service interface {
	// Start begins polling all registered networks and returns the channel of
	// observed blocks. Returns ErrServiceAlreadyStarted on a second call.
	Start(ctx context.Context) (<-chan ObservedBlock, error)

	// Close stops all subscriptions and closes the observed block channel.
	// Safe to call even if the service was never started.
	Close()
}

type closeFunc func()

// dispatchFailureHandler receives blocks that could not be fetched even after
// retries. The default implementation logs them.
type dispatchFailureHandler func(ctx context.Context, dispatchFailure BlockDispatchFailure)

type service struct {
	mu        sync.Mutex
	wg        sync.WaitGroup
	isStarted bool
	closeFunc closeFunc

	networks          map[string]Blockchain
	checkpointStorage CheckpointStorage

	retry                  retry.Retry
	dispatchFailureHandler dispatchFailureHandler
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) (<-chan ObservedBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return nil, ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	var (
		retryFailureCh    chan BlockDispatchFailure
		dispatchFailureCh = make(chan BlockDispatchFailure, dispatchFailureChannelBufferSize)
		observedBlockCh   = make(chan ObservedBlock, observedBlockChannelBufferSize)
	)

	s.closeFunc = func() {
		// Closing a channel with a sender parked on it panics the sender, so
		// join every background goroutine before touching the channels.
		cancel()
		s.wg.Wait()

		close(observedBlockCh)
		if retryFailureCh != nil {
			close(retryFailureCh)
		}
		close(dispatchFailureCh)
	}

	s.startHandleDispatchFailures(ctx, dispatchFailureCh)

	if s.retry != nil {
		retryFailureCh = make(chan BlockDispatchFailure, retryFailureChannelBufferSize)
		s.startRetryFailedBlockFetches(ctx, retryFailureCh, observedBlockCh, dispatchFailureCh)
	}

	errorSubmissionCh := chflow.FirstNonNil(retryFailureCh, dispatchFailureCh)
	if err := s.launchAllNetworkSubscriptions(ctx, observedBlockCh, errorSubmissionCh); err != nil {
		s.closeFunc()
		return nil, err
	}

	s.isStarted = true
	return observedBlockCh, nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.isStarted = false
	s.closeFunc = nil
}

type config struct {
	retry                  retry.Retry
	checkpointStorage      CheckpointStorage
	dispatchFailureHandler dispatchFailureHandler
}

// Option customizes the poller service created by New.
type Option func(*config)

// New creates a poller over the given networks. By default no checkpoint is
// kept (every run starts at the chain head), failed block fetches are not
// retried, and dispatch failures are logged.
func New(networks map[string]Blockchain, opts ...Option) *service {
	cfg := config{
		retry:                  nil,
		checkpointStorage:      nopCheckpoint{},
		dispatchFailureHandler: defaultOnDispatchFailure,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		networks:               networks,
		checkpointStorage:      cfg.checkpointStorage,
		retry:                  cfg.retry,
		dispatchFailureHandler: cfg.dispatchFailureHandler,
	}
}

func defaultOnDispatchFailure(ctx context.Context, dispatchFailure BlockDispatchFailure) {
	logger.Error(ctx, "block dispatch failure",
		"block.network", dispatchFailure.Network,
		"block.height", dispatchFailure.Height,
		"block.errors", errors.Join(dispatchFailure.Errors...),
	)
}

// WithDispatchFailureHandler overrides the handler invoked for blocks that
// could not be fetched even after retries.
func WithDispatchFailureHandler(f dispatchFailureHandler) Option {
	return func(c *config) {
		c.dispatchFailureHandler = f
	}
}

// WithRetry enables bounded re-fetching of blocks whose subscription events
// carried an error.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithCheckpointStorage sets the cursor store used to resume polling after a
// restart.
func WithCheckpointStorage(cs CheckpointStorage) Option {
	return func(c *config) {
		c.checkpointStorage = cs
	}
}
