package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/chainbell/chainbell/internal/classify"
	"github.com/chainbell/chainbell/internal/pkg/transport/jsonrpc"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ERC-20 method selectors used to read token metadata.
const (
	symbolSelector   = "0x95d89b41" // symbol()
	decimalsSelector = "0x313ce567" // decimals()
)

// callRequest is the parameter object for eth_call.
type callRequest struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// tokenDirectory resolves ERC-20 metadata through eth_call against the token
// contract. Results are cached for the lifetime of the process, since symbol
// and decimals are effectively immutable.
type tokenDirectory struct {
	conn jsonrpc.Client

	mu    sync.RWMutex
	cache map[string]classify.TokenInfo
}

var _ classify.TokenDirectory = (*tokenDirectory)(nil)

// NewTokenDirectory creates a token metadata resolver sharing the client's
// JSON-RPC connection.
func NewTokenDirectory(c *client) *tokenDirectory {
	return &tokenDirectory{
		conn:  c.conn,
		cache: make(map[string]classify.TokenInfo),
	}
}

func (d *tokenDirectory) TokenInfo(ctx context.Context, address string) (classify.TokenInfo, error) {
	key := strings.ToLower(address)

	d.mu.RLock()
	info, ok := d.cache[key]
	d.mu.RUnlock()
	if ok {
		return info, nil
	}

	symbol, err := d.callSymbol(ctx, address)
	if err != nil {
		return classify.TokenInfo{}, fmt.Errorf("reading symbol of %s: %w", address, err)
	}

	decimals, err := d.callDecimals(ctx, address)
	if err != nil {
		return classify.TokenInfo{}, fmt.Errorf("reading decimals of %s: %w", address, err)
	}

	info = classify.TokenInfo{
		Address:  address,
		Symbol:   symbol,
		Decimals: decimals,
	}

	d.mu.Lock()
	d.cache[key] = info
	d.mu.Unlock()

	return info, nil
}

// call performs an eth_call of the given selector against the contract and
// returns the raw return data.
func (d *tokenDirectory) call(ctx context.Context, contract, selector string) ([]byte, error) {
	data, err := d.conn.Fetch(ctx, "eth_call", callRequest{To: contract, Data: selector}, "latest")
	if err != nil {
		return nil, err
	}

	var result string
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return hexutil.Decode(result)
}

func (d *tokenDirectory) callSymbol(ctx context.Context, contract string) (string, error) {
	raw, err := d.call(ctx, contract, symbolSelector)
	if err != nil {
		return "", err
	}

	return decodeSymbol(raw)
}

func (d *tokenDirectory) callDecimals(ctx context.Context, contract string) (uint8, error) {
	raw, err := d.call(ctx, contract, decimalsSelector)
	if err != nil {
		return 0, err
	}

	if len(raw) == 0 {
		return 0, fmt.Errorf("empty decimals() return data")
	}

	return uint8(new(big.Int).SetBytes(raw).Uint64()), nil
}

var stringReturn = func() abi.Arguments {
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: stringType}}
}()

// decodeSymbol handles both return conventions seen in the wild: the
// standard ABI-encoded dynamic string, and the legacy bytes32 used by a few
// pre-standard tokens (e.g. MKR).
func decodeSymbol(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty symbol() return data")
	}

	if values, err := stringReturn.Unpack(raw); err == nil && len(values) == 1 {
		if symbol, ok := values[0].(string); ok && symbol != "" {
			return symbol, nil
		}
	}

	if len(raw) == 32 {
		if symbol := strings.TrimRight(string(raw), "\x00"); symbol != "" {
			return symbol, nil
		}
	}

	return "", fmt.Errorf("undecodable symbol() return data")
}
