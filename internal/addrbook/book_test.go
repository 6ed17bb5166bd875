package addrbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	exchangeAddr = "0x28C6c06298d514Db089934071355E5743bf21d60"
	treasuryAddr = "0x47ac0Fb4F2D84898e4D9E7b4DaB3C24507a6D503"
	strangerAddr = "0x000000000000000000000000000000000000dEaD"
)

func TestNew(t *testing.T) {
	t.Run("valid paired lists", func(t *testing.T) {
		book, err := New(
			[]string{exchangeAddr, treasuryAddr},
			[]string{"Exchange Hot Wallet", "Treasury"},
		)

		require.NoError(t, err)
		assert.Equal(t, 2, book.Len())
	})

	t.Run("addresses are checksum normalized", func(t *testing.T) {
		book, err := New([]string{"0x28c6c06298d514db089934071355e5743bf21d60"}, []string{"Exchange"})
		require.NoError(t, err)

		entry, ok := book.Lookup(exchangeAddr)
		require.True(t, ok)
		assert.Equal(t, exchangeAddr, entry.Address)
	})

	t.Run("whitespace around addresses and names is trimmed", func(t *testing.T) {
		book, err := New([]string{"  " + exchangeAddr + " "}, []string{" Exchange "})
		require.NoError(t, err)

		entry, ok := book.Lookup(exchangeAddr)
		require.True(t, ok)
		assert.Equal(t, "Exchange", entry.DisplayName)
	})

	t.Run("name list shorter than address list", func(t *testing.T) {
		_, err := New([]string{exchangeAddr, treasuryAddr}, []string{"Exchange"})
		assert.ErrorIs(t, err, ErrNameCountMismatch)
	})

	t.Run("empty address list", func(t *testing.T) {
		_, err := New(nil, nil)
		assert.ErrorIs(t, err, ErrNoAddresses)
	})

	t.Run("malformed address", func(t *testing.T) {
		_, err := New([]string{"not-an-address"}, []string{"Broken"})
		assert.Error(t, err)
	})
}

func TestBook_Lookup(t *testing.T) {
	book, err := New([]string{exchangeAddr}, []string{"Exchange"})
	require.NoError(t, err)

	t.Run("case insensitive match", func(t *testing.T) {
		entry, ok := book.Lookup("0x28C6C06298D514DB089934071355E5743BF21D60")
		require.True(t, ok)
		assert.Equal(t, "Exchange", entry.DisplayName)
	})

	t.Run("unknown address", func(t *testing.T) {
		_, ok := book.Lookup(strangerAddr)
		assert.False(t, ok)
	})
}

func TestBook_Matches(t *testing.T) {
	book, err := New(
		[]string{exchangeAddr, treasuryAddr},
		[]string{"Exchange", "Treasury"},
	)
	require.NoError(t, err)

	t.Run("sender monitored", func(t *testing.T) {
		matches := book.Matches(exchangeAddr, strangerAddr)

		require.Len(t, matches, 1)
		assert.Equal(t, DirectionOutgoing, matches[0].Direction)
		assert.Equal(t, "Exchange", matches[0].Entry.DisplayName)
	})

	t.Run("recipient monitored", func(t *testing.T) {
		matches := book.Matches(strangerAddr, treasuryAddr)

		require.Len(t, matches, 1)
		assert.Equal(t, DirectionIncoming, matches[0].Direction)
		assert.Equal(t, "Treasury", matches[0].Entry.DisplayName)
	})

	t.Run("both sides monitored", func(t *testing.T) {
		matches := book.Matches(exchangeAddr, treasuryAddr)

		require.Len(t, matches, 2)
		assert.Equal(t, DirectionOutgoing, matches[0].Direction)
		assert.Equal(t, DirectionIncoming, matches[1].Direction)
	})

	t.Run("neither side monitored", func(t *testing.T) {
		matches := book.Matches(strangerAddr, "0x1111111111111111111111111111111111111111")
		assert.Empty(t, matches)
	})

	t.Run("contract creation has empty recipient", func(t *testing.T) {
		matches := book.Matches(exchangeAddr, "")

		require.Len(t, matches, 1)
		assert.Equal(t, DirectionOutgoing, matches[0].Direction)
	})
}
