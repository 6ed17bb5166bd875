package classify

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// nativeSymbol is the display symbol for the chain's native coin.
const nativeSymbol = "ETH"

// nativeDecimals is the wei-to-ether scale.
const nativeDecimals = 18

// erc20TransferTopic is the topic 0 of the ERC-20 Transfer(address,address,uint256) event.
var erc20TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")).Hex()

var (
	errNoInputLeg    = errors.New("no transfer leg paid by the sender")
	errNoOutputLeg   = errors.New("no transfer leg received by the sender")
	errNoTransferLog = errors.New("no decodable ERC-20 transfer events")
)

// swapDecoder turns the receipt logs of a matched transaction into Swap
// details, or fails when the logs do not carry the expected transfer legs.
type swapDecoder interface {
	decodeSwap(ctx context.Context, s *service, detail TransactionDetail) (Swap, error)
}

// routerSwapDecoder decodes the common DEX router shape: a chain of ERC-20
// Transfer events where the first leg paid by the sender is the input and the
// last leg received by the sender is the output. The nativeIn and nativeOut
// flags mark functions whose in or out side is the native coin (wrapped
// internally by the router), in which case that side comes from the
// transaction value or the final wrapped-coin leg instead.
type routerSwapDecoder struct {
	nativeIn  bool
	nativeOut bool
}

var _ swapDecoder = routerSwapDecoder{}

// swapSelectors is the closed table of recognized swap-function selectors.
// Extend it by adding entries; the classifier control flow never changes.
var swapSelectors = map[string]swapDecoder{
	// Uniswap V2 style routers
	"0x38ed1739": routerSwapDecoder{},                // swapExactTokensForTokens
	"0x8803dbee": routerSwapDecoder{},                // swapTokensForExactTokens
	"0x7ff36ab5": routerSwapDecoder{nativeIn: true},  // swapExactETHForTokens
	"0xfb3bdb41": routerSwapDecoder{nativeIn: true},  // swapETHForExactTokens
	"0x18cbafe5": routerSwapDecoder{nativeOut: true}, // swapExactTokensForETH
	"0x4a25d94a": routerSwapDecoder{nativeOut: true}, // swapTokensForExactETH
	"0x5c11d795": routerSwapDecoder{},                // swapExactTokensForTokensSupportingFeeOnTransferTokens
	"0xb6f9de95": routerSwapDecoder{nativeIn: true},  // swapExactETHForTokensSupportingFeeOnTransferTokens
	"0x791ac947": routerSwapDecoder{nativeOut: true}, // swapExactTokensForETHSupportingFeeOnTransferTokens

	// Uniswap V3 style routers
	"0x414bf389": routerSwapDecoder{}, // exactInputSingle
	"0xc04b8d59": routerSwapDecoder{}, // exactInput
}

// transferLeg is a decoded ERC-20 Transfer event.
type transferLeg struct {
	token  string   // token contract address
	from   string   // sender, lowercase
	to     string   // recipient, lowercase
	amount *big.Int // raw token units
}

// decodeTransferLegs extracts every well-formed ERC-20 Transfer event from the
// receipt logs, preserving order.
func decodeTransferLegs(logs []Log) []transferLeg {
	var legs []transferLeg

	for _, entry := range logs {
		if len(entry.Topics) != 3 || !strings.EqualFold(entry.Topics[0], erc20TransferTopic) {
			continue
		}

		raw, err := hexutil.Decode(string(entry.Data))
		if err != nil || len(raw) == 0 {
			continue
		}

		legs = append(legs, transferLeg{
			token:  common.HexToAddress(entry.Address).Hex(),
			from:   strings.ToLower(common.HexToAddress(entry.Topics[1]).Hex()),
			to:     strings.ToLower(common.HexToAddress(entry.Topics[2]).Hex()),
			amount: new(big.Int).SetBytes(raw),
		})
	}

	return legs
}

func (d routerSwapDecoder) decodeSwap(ctx context.Context, s *service, detail TransactionDetail) (Swap, error) {
	legs := decodeTransferLegs(detail.Logs)
	if len(legs) == 0 {
		return Swap{}, errNoTransferLog
	}

	sender := strings.ToLower(common.HexToAddress(detail.From).Hex())

	var swap Swap

	if d.nativeIn {
		value, err := hexutil.DecodeBig(string(detail.Value))
		if err != nil {
			return Swap{}, fmt.Errorf("decoding transaction value: %w", err)
		}

		swap.AmountIn = formatUnits(value, nativeDecimals)
		swap.TokenIn = nativeSymbol
	} else {
		leg, ok := firstLegFrom(legs, sender)
		if !ok {
			return Swap{}, errNoInputLeg
		}

		info, err := s.tokens.TokenInfo(ctx, leg.token)
		if err != nil {
			return Swap{}, fmt.Errorf("resolving input token %s: %w", leg.token, err)
		}

		swap.AmountIn = formatUnits(leg.amount, info.Decimals)
		swap.TokenIn = info.Symbol
	}

	if d.nativeOut {
		// The final leg moves wrapped coin back to the router before it is
		// unwrapped and paid out, so its amount is the ETH received.
		leg := legs[len(legs)-1]
		swap.AmountOut = formatUnits(leg.amount, nativeDecimals)
		swap.TokenOut = nativeSymbol
	} else {
		leg, ok := lastLegTo(legs, sender)
		if !ok {
			return Swap{}, errNoOutputLeg
		}

		info, err := s.tokens.TokenInfo(ctx, leg.token)
		if err != nil {
			return Swap{}, fmt.Errorf("resolving output token %s: %w", leg.token, err)
		}

		swap.AmountOut = formatUnits(leg.amount, info.Decimals)
		swap.TokenOut = info.Symbol
		swap.TokenLink = fmt.Sprintf("%s/%s", s.tokenLinkBase, leg.token)
	}

	return swap, nil
}

// firstLegFrom returns the earliest transfer paid by the given address.
func firstLegFrom(legs []transferLeg, from string) (transferLeg, bool) {
	for _, leg := range legs {
		if leg.from == from {
			return leg, true
		}
	}
	return transferLeg{}, false
}

// lastLegTo returns the latest transfer received by the given address.
func lastLegTo(legs []transferLeg, to string) (transferLeg, bool) {
	for i := len(legs) - 1; i >= 0; i-- {
		if legs[i].to == to {
			return legs[i], true
		}
	}
	return transferLeg{}, false
}

// formatUnits renders a raw token amount as a decimal string scaled down by
// the given number of decimals, with trailing zeros trimmed.
func formatUnits(amount *big.Int, decimals uint8) string {
	if decimals == 0 {
		return amount.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(new(big.Int).Set(amount), divisor, new(big.Int))

	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := strings.TrimRight(fmt.Sprintf("%0*s", int(decimals), rem.String()), "0")
	return fmt.Sprintf("%s.%s", quo, frac)
}
