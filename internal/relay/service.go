// Package relay is the orchestration layer: it consumes observed blocks from
// the poller, filters transactions against the address registry and runs the
// fetch, classify, notify pipeline for each match, in the order the chain
// recorded them. Per-transaction failures are logged and skipped so a single
// bad hash never stalls the stream.
package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/chainbell/chainbell/internal/addrbook"
	"github.com/chainbell/chainbell/internal/chainpoll"
	"github.com/chainbell/chainbell/internal/classify"
	"github.com/chainbell/chainbell/internal/notify"
	"github.com/chainbell/chainbell/internal/pkg/logger"
	"github.com/chainbell/chainbell/internal/pkg/x/chflow"
	"github.com/chainbell/chainbell/internal/txdetail"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// ErrNoMonitoredAddress is returned by RelayOne when neither side of the
// transaction is in the address registry.
var ErrNoMonitoredAddress = errors.New("transaction involves no monitored address")

// Service coordinates the full notification pipeline.
type Service interface {
	// Start launches the poller and begins relaying matched transactions in
	// the background. Returns ErrServiceAlreadyStarted on a second call.
	// Call Close to shut down.
	Start(ctx context.Context) error

	// RelayOne runs the fetch, classify, notify path once for a single
	// transaction hash. It returns ErrNoMonitoredAddress when the
	// transaction touches no registry entry, and the first pipeline error
	// otherwise.
	RelayOne(ctx context.Context, hash string) error

	// Close shuts down the poller and the relay loop. Safe to call even if
	// the service was never started.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	poller     chainpoll.Service
	book       *addrbook.Book
	fetcher    txdetail.Service
	classifier classify.Service
	notifier   notify.Service
	checkpoint chainpoll.CheckpointStorage
}

var _ Service = (*service)(nil)

type config struct {
	checkpoint chainpoll.CheckpointStorage
}

// Option customizes the relay created by New.
type Option func(*config)

// WithCheckpointStorage installs the cursor store advanced after each fully
// relayed block. Give the poller the same store so a restart resumes where
// this relay left off.
func WithCheckpointStorage(storage chainpoll.CheckpointStorage) Option {
	return func(c *config) {
		c.checkpoint = storage
	}
}

// New wires the pipeline stages into a relay.
func New(
	poller chainpoll.Service,
	book *addrbook.Book,
	fetcher txdetail.Service,
	classifier classify.Service,
	notifier notify.Service,
	opts ...Option,
) *service {
	cfg := config{
		checkpoint: chainpoll.NewMemoryCheckpoint(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		poller:     poller,
		book:       book,
		fetcher:    fetcher,
		classifier: classifier,
		notifier:   notifier,
		checkpoint: cfg.checkpoint,
	}
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	blocksCh, err := s.poller.Start(ctx)
	if err != nil {
		cancel()
		return err
	}

	go s.relayBlocks(ctx, blocksCh)

	s.closeFunc = func() {
		cancel()
		s.poller.Close()
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

// relayBlocks consumes observed blocks until the channel closes or the
// context is canceled. Blocks are handled strictly in arrival order.
func (s *service) relayBlocks(ctx context.Context, blocksCh <-chan chainpoll.ObservedBlock) {
	for {
		block, ok := chflow.Receive(ctx, blocksCh)
		if !ok {
			return
		}

		s.relayBlock(ctx, block)
	}
}

// relayBlock processes every transaction of the block, then advances the
// cursor. The cursor moves only after the whole block was handled, so a crash
// mid-block replays the block rather than skipping its tail; the delivery
// guard absorbs the resulting duplicates.
func (s *service) relayBlock(ctx context.Context, block chainpoll.ObservedBlock) {
	for _, tx := range block.Transactions {
		matches := s.book.Matches(tx.From, tx.To)
		if len(matches) == 0 {
			continue
		}

		if err := s.relayMatches(ctx, tx.Hash, matches); err != nil {
			logger.Warn(ctx, "skipping transaction after pipeline failure",
				"network", block.Network,
				"block.height", block.Height,
				"tx.hash", tx.Hash,
				"error", err,
			)
		}
	}

	if err := s.checkpoint.SaveCheckpoint(ctx, block.Network, block.Height); err != nil {
		logger.Error(ctx, "error saving checkpoint",
			"network", block.Network,
			"block.height", block.Height,
			"error", err,
		)
	}
}

// relayMatches fetches the transaction detail once, classifies it once, and
// delivers one alert per matched side. Already delivered alerts are skipped
// silently.
func (s *service) relayMatches(ctx context.Context, hash string, matches []addrbook.Match) error {
	detail, err := s.fetcher.FetchDetail(ctx, hash)
	if err != nil {
		return err
	}

	return s.relayDetail(ctx, detail, matches)
}

// relayDetail classifies the transaction once and delivers one alert per
// matched side. A failed delivery never blocks the remaining sides; their
// errors are collected and returned joined.
func (s *service) relayDetail(ctx context.Context, detail txdetail.Detail, matches []addrbook.Match) error {
	action := s.classifier.Classify(ctx, mapDetailToClassify(detail))

	var errs []error
	for _, match := range matches {
		notice := notify.Notice{
			Transaction: notify.Transaction{
				Hash:  detail.Hash,
				From:  detail.From,
				To:    detail.To,
				Value: detail.Value,
			},
			Match:  match,
			Action: action,
		}

		if err := s.notifier.Notify(ctx, notice); err != nil && !errors.Is(err, notify.ErrAlreadyNotified) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *service) RelayOne(ctx context.Context, hash string) error {
	detail, err := s.fetcher.FetchDetail(ctx, hash)
	if err != nil {
		return err
	}

	matches := s.book.Matches(detail.From, detail.To)
	if len(matches) == 0 {
		return ErrNoMonitoredAddress
	}

	return s.relayDetail(ctx, detail, matches)
}

// mapDetailToClassify converts the explorer's view of a transaction into the
// classifier's input, preserving log order.
func mapDetailToClassify(detail txdetail.Detail) classify.TransactionDetail {
	logs := make([]classify.Log, len(detail.Logs))
	for i, entry := range detail.Logs {
		logs[i] = classify.Log(entry)
	}

	return classify.TransactionDetail{
		Hash:  detail.Hash,
		From:  detail.From,
		To:    detail.To,
		Value: detail.Value,
		Input: detail.Input,
		Logs:  logs,
	}
}
