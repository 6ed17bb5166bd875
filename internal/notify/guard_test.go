package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopDeliveryGuard(t *testing.T) {
	t.Run("claims every alert unconditionally", func(t *testing.T) {
		guard := nopDeliveryGuard{}

		assert.NoError(t, guard.ClaimDelivery(t.Context(), "0xaaa:OUTGOING", time.Hour))
		assert.NoError(t, guard.ClaimDelivery(t.Context(), "0xaaa:OUTGOING", time.Hour))
	})
}

func TestMemoryDeliveryGuard(t *testing.T) {
	t.Run("rejects a second claim for the same key", func(t *testing.T) {
		guard := NewMemoryDeliveryGuard()

		require.NoError(t, guard.ClaimDelivery(t.Context(), "0xaaa:OUTGOING", time.Hour))
		assert.ErrorIs(t, guard.ClaimDelivery(t.Context(), "0xaaa:OUTGOING", time.Hour), ErrAlreadyNotified)
	})

	t.Run("keys are independent", func(t *testing.T) {
		guard := NewMemoryDeliveryGuard()

		require.NoError(t, guard.ClaimDelivery(t.Context(), "0xaaa:OUTGOING", time.Hour))
		assert.NoError(t, guard.ClaimDelivery(t.Context(), "0xaaa:INCOMING", time.Hour))
		assert.NoError(t, guard.ClaimDelivery(t.Context(), "0xbbb:OUTGOING", time.Hour))
	})
}
