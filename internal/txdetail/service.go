// Package txdetail enriches transaction hashes into full transaction details,
// receipt logs included, using a block-explorer API. Freshly mined
// transactions may lag the explorer's indexing, so lookups are retried a
// bounded number of times before the failure surfaces to the caller.
package txdetail

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainbell/chainbell/internal/pkg/resilience/retry"
)

// ErrTransactionNotFound is returned when the explorer has no record of the
// requested transaction hash, typically because it has not indexed it yet.
var ErrTransactionNotFound = errors.New("transaction not found")

// Explorer defines the block-explorer operations the fetcher depends on.
// Implementations must return ErrTransactionNotFound (possibly wrapped) when
// the hash is unknown to the explorer.
type Explorer interface {
	// TransactionByHash returns the transaction fields for the given hash.
	TransactionByHash(ctx context.Context, hash string) (Transaction, error)

	// TransactionReceipt returns the receipt, logs included, for the given hash.
	TransactionReceipt(ctx context.Context, hash string) (Receipt, error)
}

// Service resolves a transaction hash into a Detail.
type Service interface {
	// FetchDetail retrieves the transaction and its receipt for the given
	// hash. Lookups failing with ErrTransactionNotFound are retried within
	// the configured bound; exhausting the retries surfaces the error.
	FetchDetail(ctx context.Context, hash string) (Detail, error)
}

type service struct {
	explorer Explorer
	retry    retry.Retry
}

var _ Service = (*service)(nil)

func (s *service) FetchDetail(ctx context.Context, hash string) (Detail, error) {
	var detail Detail

	operation := func() error {
		tx, err := s.explorer.TransactionByHash(ctx, hash)
		if err != nil {
			return err
		}

		receipt, err := s.explorer.TransactionReceipt(ctx, hash)
		if err != nil {
			return err
		}

		detail = Detail{Transaction: tx, Receipt: receipt}
		return nil
	}

	if err := s.retry.Execute(ctx, operation); err != nil {
		return Detail{}, fmt.Errorf("fetching detail for %s: %w", hash, err)
	}

	return detail, nil
}

type config struct {
	retry retry.Retry
}

// Option customizes the fetcher created by New.
type Option func(*config)

// New creates a detail fetcher over the given explorer. Lookups are retried
// with the package default retry policy unless WithRetry overrides it.
func New(explorer Explorer, opts ...Option) *service {
	cfg := config{
		retry: retry.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		explorer: explorer,
		retry:    cfg.retry,
	}
}

// WithRetry overrides the retry policy applied to explorer lookups.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}
