package classify

import "fmt"

// Kind discriminates the recognized action variants.
type Kind string

const (
	// KindTransfer is a plain value transfer with no call data.
	KindTransfer Kind = "transfer"

	// KindSwap is a token exchange through a known DEX router function.
	KindSwap Kind = "swap"

	// KindContractCall is any contract invocation that is not a recognized
	// swap, or a swap whose logs could not be decoded.
	KindContractCall Kind = "contract_call"

	// KindUnknown means the transaction input was unreadable.
	KindUnknown Kind = "unknown"
)

// Swap describes a decoded token exchange: what went in, what came out, and a
// link to the received token's explorer page.
type Swap struct {
	AmountIn  string // human-formatted input amount
	TokenIn   string // input token symbol ("ETH" for the native coin)
	AmountOut string // human-formatted output amount
	TokenOut  string // output token symbol
	TokenLink string // explorer page of the received token, empty for ETH
}

// Action is the classification result for a single transaction. Selector is
// set for contract calls; Swap is set only when Kind is KindSwap.
type Action struct {
	Kind     Kind
	Selector string
	Swap     *Swap
}

// Summary renders the action as a short human-readable sentence, e.g.
// "Swap 0.1 ETH for 1000 UNI".
func (a Action) Summary() string {
	switch a.Kind {
	case KindTransfer:
		return "Transfer"
	case KindSwap:
		return fmt.Sprintf("Swap %s %s for %s %s", a.Swap.AmountIn, a.Swap.TokenIn, a.Swap.AmountOut, a.Swap.TokenOut)
	case KindContractCall:
		if a.Selector == "" {
			return "Contract call"
		}
		return fmt.Sprintf("Contract call %s", a.Selector)
	default:
		return "No action info available"
	}
}
