// Package addrbook holds the registry of monitored addresses. The registry is
// loaded once at startup from configuration and is immutable afterwards: every
// entry pairs a checksum-normalized Ethereum address with a human-readable
// display name used in notifications.
package addrbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNameCountMismatch is returned by New when the list of display names does
// not pair up one-to-one with the list of monitored addresses.
var ErrNameCountMismatch = errors.New("address and display name lists must have the same length")

// ErrNoAddresses is returned by New when no monitored addresses are provided.
var ErrNoAddresses = errors.New("at least one monitored address is required")

// Direction indicates which side of a transaction matched a monitored address.
type Direction string

const (
	// DirectionIncoming means the monitored address is the transaction recipient.
	DirectionIncoming Direction = "INCOMING"

	// DirectionOutgoing means the monitored address is the transaction sender.
	DirectionOutgoing Direction = "OUTGOING"
)

// Entry is a single monitored address together with its display name.
type Entry struct {
	Address     string // checksum-normalized address
	DisplayName string // human-readable name shown in notifications
}

// Match pairs a registry entry with the direction in which it matched a
// transaction. A single transaction can produce up to two matches, one per
// side, when both participants are monitored.
type Match struct {
	Entry     Entry
	Direction Direction
}

// Book is the immutable set of monitored addresses. Lookups are keyed by the
// lowercase form of the address so matching is case-insensitive.
type Book struct {
	entries []Entry
	byAddr  map[string]Entry
}

// New builds a Book from positionally paired address and display name lists.
// Addresses are validated and checksum-normalized; an invalid address, an
// empty list, or mismatched list lengths yield an error.
func New(addresses, names []string) (*Book, error) {
	if len(addresses) == 0 {
		return nil, ErrNoAddresses
	}

	if len(addresses) != len(names) {
		return nil, fmt.Errorf("%w: %d addresses, %d names", ErrNameCountMismatch, len(addresses), len(names))
	}

	book := &Book{
		entries: make([]Entry, 0, len(addresses)),
		byAddr:  make(map[string]Entry, len(addresses)),
	}

	for i, raw := range addresses {
		addr := strings.TrimSpace(raw)
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid monitored address %q", raw)
		}

		entry := Entry{
			Address:     common.HexToAddress(addr).Hex(),
			DisplayName: strings.TrimSpace(names[i]),
		}

		book.entries = append(book.entries, entry)
		book.byAddr[strings.ToLower(entry.Address)] = entry
	}

	return book, nil
}

// Len returns the number of monitored addresses in the book.
func (b *Book) Len() int {
	return len(b.entries)
}

// Entries returns a copy of all registry entries, in load order.
func (b *Book) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Lookup returns the entry for the given address, matching case-insensitively.
func (b *Book) Lookup(address string) (Entry, bool) {
	entry, ok := b.byAddr[strings.ToLower(strings.TrimSpace(address))]
	return entry, ok
}

// Matches reports every monitored side of a transaction between from and to.
// The sender side yields an OUTGOING match, the recipient side an INCOMING
// one. Transactions touching no monitored address produce no matches.
func (b *Book) Matches(from, to string) []Match {
	var matches []Match

	if entry, ok := b.Lookup(from); ok {
		matches = append(matches, Match{Entry: entry, Direction: DirectionOutgoing})
	}

	if entry, ok := b.Lookup(to); ok {
		matches = append(matches, Match{Entry: entry, Direction: DirectionIncoming})
	}

	return matches
}
