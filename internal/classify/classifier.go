// Package classify inspects transaction details and recognizes a small, fixed
// set of actions. A transaction is a Swap only when its leading method
// selector appears in the known swap-function table AND the receipt's ERC-20
// Transfer events decode into concrete in/out legs; anything else degrades to
// a plain transfer, a generic contract call, or unknown. The table is a
// closed list by design: new patterns are added as table entries, not control
// flow.
package classify

import (
	"context"
	"strings"

	"github.com/chainbell/chainbell/internal/pkg/logger"
	"github.com/chainbell/chainbell/internal/pkg/types"
)

// selectorHexLength is the length of a "0x"-prefixed 4-byte method selector.
const selectorHexLength = 10

// Log is a receipt log entry as the classifier consumes it.
type Log struct {
	Address string
	Topics  []string
	Data    types.Hex
}

// TransactionDetail is the classifier's read-only input: the transaction
// fields plus its ordered receipt logs.
type TransactionDetail struct {
	Hash  string
	From  string
	To    string
	Value types.Hex // transferred amount in wei
	Input string    // call data
	Logs  []Log
}

// Service classifies transaction details into actions.
type Service interface {
	// Classify derives the action for the given detail. It never fails: a
	// recognized swap whose logs cannot be decoded degrades to a contract
	// call rather than an error.
	Classify(ctx context.Context, detail TransactionDetail) Action
}

type service struct {
	tokens        TokenDirectory
	tokenLinkBase string
}

var _ Service = (*service)(nil)

func (s *service) Classify(ctx context.Context, detail TransactionDetail) Action {
	input := strings.TrimSpace(detail.Input)
	if input == "" || input == "0x" {
		return Action{Kind: KindTransfer}
	}

	if !strings.HasPrefix(input, "0x") || len(input) < selectorHexLength {
		return Action{Kind: KindUnknown}
	}

	selector := strings.ToLower(input[:selectorHexLength])

	decoder, ok := swapSelectors[selector]
	if !ok {
		return Action{Kind: KindContractCall, Selector: selector}
	}

	swap, err := decoder.decodeSwap(ctx, s, detail)
	if err != nil {
		// Fail open: the selector is a known swap but the logs did not
		// decode, so notify with reduced detail.
		logger.Debug(ctx, "swap selector matched but log decoding failed",
			"tx.hash", detail.Hash,
			"tx.selector", selector,
			"error", err,
		)
		return Action{Kind: KindContractCall, Selector: selector}
	}

	return Action{Kind: KindSwap, Selector: selector, Swap: &swap}
}

type config struct {
	tokenLinkBase string
}

// Option customizes the classifier created by New.
type Option func(*config)

// New creates a classifier backed by the given token directory.
func New(tokens TokenDirectory, opts ...Option) *service {
	cfg := config{
		tokenLinkBase: "https://etherscan.io/token",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		tokens:        tokens,
		tokenLinkBase: cfg.tokenLinkBase,
	}
}

// WithTokenLinkBase overrides the base URL used to build token page links
// (default "https://etherscan.io/token").
func WithTokenLinkBase(base string) Option {
	return func(c *config) {
		c.tokenLinkBase = strings.TrimRight(base, "/")
	}
}
