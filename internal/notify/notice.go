// Package notify formats and delivers transaction alerts to the configured
// chat channel. Delivery is at-most-once: a guard records the notification
// before the first send attempt, so exhausted retries never lead to a second
// delivery of the same alert on a later pass over the same block range.
package notify

import (
	"github.com/chainbell/chainbell/internal/addrbook"
	"github.com/chainbell/chainbell/internal/classify"
	"github.com/chainbell/chainbell/internal/pkg/types"
)

// Transaction carries the fields of a matched transaction that appear in the
// rendered alert.
type Transaction struct {
	Hash  string
	From  string
	To    string
	Value types.Hex // transferred amount in wei
}

// Notice is a single alert to deliver: the transaction, the registry match
// that selected it, and the classified action describing what it did.
type Notice struct {
	Transaction Transaction
	Match       addrbook.Match
	Action      classify.Action
}
