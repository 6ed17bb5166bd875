package chainpoll

import (
	"context"
	"errors"

	"github.com/chainbell/chainbell/internal/pkg/types"
	"github.com/chainbell/chainbell/internal/pkg/x/chflow"
)

// ErrNetworkNotRegistered is returned when attempting to operate on an unregistered network.
var ErrNetworkNotRegistered = errors.New("network not registered")

// BlockchainEvent represents an event emitted by a blockchain subscription.
// It always includes the block height that was polled, and carries either the
// full block data or an error if retrieval failed.
type BlockchainEvent struct {
	Height types.Hex // block height (always set)
	Block  Block     // block contents (zero value if Err is set)
	Err    error     // any error encountered (nil on success)
}

// Blockchain defines a source of blockchain data. It supports fetching
// individual blocks by height and streaming new blocks as they appear.
type Blockchain interface {
	// FetchBlockByHeight retrieves the block at the specified height, with
	// full transaction data.
	FetchBlockByHeight(ctx context.Context, height types.Hex) (Block, error)

	// Subscribe begins streaming blocks from fromHeight (inclusive). If
	// fromHeight is the zero value, the implementation should fetch the
	// latest known block and begin streaming from there.
	//
	// It returns a receive-only channel of BlockchainEvent. The channel is
	// closed when ctx is canceled.
	Subscribe(ctx context.Context, fromHeight types.Hex) (<-chan BlockchainEvent, error)
}

// BlockDispatchFailure represents a failure to dispatch a block for
// processing, typically because the provider errored while it was fetched.
//
// Errors holds every error seen for the block: the original event error plus
// any errors from re-fetch attempts. Use errors.Join(failure.Errors...) to
// collapse them for logging.
type BlockDispatchFailure struct {
	Network string    // blockchain network name
	Height  types.Hex // block height that failed to be dispatched
	Errors  []error   // all errors encountered during dispatch and retries
}

// handleDispatchFailures consumes unrecoverable dispatch errors from
// dispatchErrCh and passes each one to the configured handler. It blocks until
// the channel closes or ctx is canceled.
func (s *service) handleDispatchFailures(ctx context.Context, dispatchErrCh <-chan BlockDispatchFailure) {
	for {
		dispatchFailure, ok := chflow.Receive(ctx, dispatchErrCh)
		if !ok {
			return
		}

		if s.dispatchFailureHandler != nil {
			s.dispatchFailureHandler(ctx, dispatchFailure)
		}
	}
}

// startHandleDispatchFailures launches handleDispatchFailures in a background
// goroutine and returns immediately.
func (s *service) startHandleDispatchFailures(ctx context.Context, dispatchErrCh <-chan BlockDispatchFailure) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.handleDispatchFailures(ctx, dispatchErrCh)
	}()
}

// retryFailedBlockFetches re-fetches blocks whose subscription events carried
// an error. Successful re-fetches are recovered into recoveredCh; persistent
// failures gain the retry errors and are forwarded to finalErrorCh. The
// channels are shared and owned by the caller; this function closes none of
// them.
func (s *service) retryFailedBlockFetches(ctx context.Context, retryCh <-chan BlockDispatchFailure, recoveredCh chan<- ObservedBlock, finalErrorCh chan<- BlockDispatchFailure) {
	for {
		blockErr, ok := chflow.Receive(ctx, retryCh)
		if !ok {
			return
		}

		retryErr := s.retry.Execute(ctx, func() error {
			client, ok := s.networks[blockErr.Network]
			if !ok {
				return ErrNetworkNotRegistered
			}

			block, err := client.FetchBlockByHeight(ctx, blockErr.Height)
			if err != nil {
				return err
			}

			observedBlock := ObservedBlock{Network: blockErr.Network, Block: block}
			_ = chflow.Send(ctx, recoveredCh, observedBlock)
			return nil
		})
		if retryErr == nil {
			continue // recovered: drop the failure
		}

		blockErr.Errors = append(blockErr.Errors, retryErr)

		if ok = chflow.Send(ctx, finalErrorCh, blockErr); !ok {
			return
		}
	}
}

// startRetryFailedBlockFetches launches retryFailedBlockFetches in a
// background goroutine and returns immediately.
func (s *service) startRetryFailedBlockFetches(ctx context.Context, retryCh <-chan BlockDispatchFailure, recoveredCh chan<- ObservedBlock, finalErrorCh chan<- BlockDispatchFailure) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.retryFailedBlockFetches(ctx, retryCh, recoveredCh, finalErrorCh)
	}()
}

// dispatchSubscriptionEvents routes BlockchainEvent values from eventsCh:
// failed events become BlockDispatchFailure values on errorsCh, successful
// ones become ObservedBlock values on blocksCh. Both output channels are
// owned by the caller.
func (s *service) dispatchSubscriptionEvents(ctx context.Context, network string, eventsCh <-chan BlockchainEvent, blocksCh chan<- ObservedBlock, errorsCh chan<- BlockDispatchFailure) {
	for {
		event, ok := chflow.Receive(ctx, eventsCh)
		if !ok {
			return
		}

		if event.Err != nil {
			dispatchFailure := BlockDispatchFailure{
				Network: network,
				Height:  event.Height,
				Errors:  []error{event.Err},
			}
			if ok := chflow.Send(ctx, errorsCh, dispatchFailure); !ok {
				return
			}

			continue
		}

		observedBlock := ObservedBlock{Network: network, Block: event.Block}
		if ok := chflow.Send(ctx, blocksCh, observedBlock); !ok {
			return
		}
	}
}

// launchAllNetworkSubscriptions starts one subscription per registered
// network. For each network it loads the latest checkpoint, resumes from the
// block after it when one exists, subscribes, and spawns a dispatcher
// goroutine. Returns an error if any checkpoint load (other than
// ErrNoCheckpointFound) or subscription fails.
func (s *service) launchAllNetworkSubscriptions(ctx context.Context, blocksCh chan<- ObservedBlock, errorsCh chan<- BlockDispatchFailure) error {
	for network, client := range s.networks {
		startHeight, err := s.checkpointStorage.LoadLatestCheckpoint(ctx, network)
		if err != nil && !errors.Is(err, ErrNoCheckpointFound) {
			return err
		}

		if !startHeight.IsEmpty() {
			startHeight = startHeight.Add(1)
		}

		eventsCh, err := client.Subscribe(ctx, startHeight)
		if err != nil {
			return err
		}

		s.wg.Add(1)
		go func(network string, eventsCh <-chan BlockchainEvent) {
			defer s.wg.Done()
			s.dispatchSubscriptionEvents(ctx, network, eventsCh, blocksCh, errorsCh)
		}(network, eventsCh)
	}

	return nil
}
