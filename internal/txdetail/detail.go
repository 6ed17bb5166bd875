package txdetail

import "github.com/chainbell/chainbell/internal/pkg/types"

// Log is a single receipt log entry, in the order the receipt recorded it.
type Log struct {
	Address string    // contract that emitted the log
	Topics  []string  // indexed topics, topic 0 is the event signature hash
	Data    types.Hex // unindexed payload
}

// Transaction holds the transaction fields the explorer returns for a hash.
type Transaction struct {
	Hash        string
	From        string
	To          string
	Value       types.Hex // transferred amount in wei
	Input       string    // call data, "0x" for plain transfers
	BlockNumber types.Hex
}

// Receipt holds the receipt fields relevant to classification.
type Receipt struct {
	Status types.Hex // 0x1 on success, 0x0 on revert
	Logs   []Log
}

// Detail is the enriched, ephemeral view of a transaction: the transaction
// fields joined with its receipt logs. It is fetched once per relevant hash
// and never persisted.
type Detail struct {
	Transaction
	Receipt
}
