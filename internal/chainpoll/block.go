package chainpoll

import "github.com/chainbell/chainbell/internal/pkg/types"

// Transaction is the poller's view of a blockchain transaction: enough to
// filter against the address registry and to hand the hash off for detail
// fetching. Values come read-only from the node provider.
type Transaction struct {
	Hash        string    // unique transaction hash
	From        string    // sender address
	To          string    // recipient address (empty for contract creation)
	Value       types.Hex // transferred amount in wei
	Input       string    // call data, "0x" for plain transfers
	BlockNumber types.Hex // height of the containing block
}

// Block is a blockchain block with its height, hash and transactions, in the
// order the chain recorded them.
type Block struct {
	Height       types.Hex
	Hash         string
	Transactions []Transaction
}

// ObservedBlock is a block detected by the poller, annotated with the network
// it originated from. It is the primary output of this package.
type ObservedBlock struct {
	Network string // blockchain network name (e.g. "ethereum")
	Block           // embedded block data
}
