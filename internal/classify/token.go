package classify

import "context"

// TokenInfo describes an ERC-20 token well enough to format amounts.
type TokenInfo struct {
	Address  string // token contract address
	Symbol   string // ticker symbol, e.g. "UNI"
	Decimals uint8  // number of decimal places amounts are scaled by
}

// TokenDirectory resolves token contract addresses into symbol and decimals
// metadata. Implementations typically query the token contract on chain and
// may cache results, since token metadata is effectively immutable.
type TokenDirectory interface {
	TokenInfo(ctx context.Context, address string) (TokenInfo, error)
}
