package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chainbell/chainbell/internal/pkg/logger"
	"github.com/chainbell/chainbell/internal/pkg/resilience/retry"
)

// Messenger sends a rendered message to the configured chat channel. The
// adapter owns the channel identity and the wire format details.
type Messenger interface {
	SendMessage(ctx context.Context, text string) error
}

// Service delivers alerts for matched transactions.
type Service interface {
	// Notify renders and delivers the given notice. It returns
	// ErrAlreadyNotified when the alert was delivered (or claimed) before,
	// and the delivery error when every send attempt failed. A failed
	// delivery keeps its claim, so the same alert is never retried on a
	// later pass.
	Notify(ctx context.Context, notice Notice) error
}

type config struct {
	retry    retry.Retry
	guard    DeliveryGuard
	claimTTL time.Duration
}

type service struct {
	messenger Messenger
	retry     retry.Retry
	guard     DeliveryGuard
	claimTTL  time.Duration
}

var _ Service = (*service)(nil)

// Option customizes the notifier created by New.
type Option func(*config)

// WithRetry overrides the retry policy applied to send attempts.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithDeliveryGuard installs a guard that deduplicates alerts across
// reprocessed block ranges (and across restarts, for durable guards).
func WithDeliveryGuard(guard DeliveryGuard) Option {
	return func(c *config) {
		c.guard = guard
	}
}

// WithClaimTTL sets how long delivery claims are held by guards that support
// expiry (default 24h).
func WithClaimTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.claimTTL = ttl
	}
}

// New creates a notifier that delivers through the given messenger.
func New(messenger Messenger, opts ...Option) *service {
	cfg := config{
		retry:    retry.New(retry.WithDelay(time.Second), retry.WithMaxDelay(5*time.Second)),
		guard:    nopDeliveryGuard{},
		claimTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		messenger: messenger,
		retry:     cfg.retry,
		guard:     cfg.guard,
		claimTTL:  cfg.claimTTL,
	}
}

func (s *service) Notify(ctx context.Context, notice Notice) error {
	key := deliveryKey(notice)

	if err := s.guard.ClaimDelivery(ctx, key, s.claimTTL); err != nil {
		if errors.Is(err, ErrAlreadyNotified) {
			logger.Debug(ctx, "skipping already delivered alert", "delivery.key", key)
			return err
		}
		return fmt.Errorf("claiming delivery for %s: %w", key, err)
	}

	text := buildMessage(notice)

	err := s.retry.Execute(ctx, func() error {
		return s.messenger.SendMessage(ctx, text)
	})
	if err != nil {
		// The claim is kept on purpose: at most one delivery per alert.
		logger.Warn(ctx, "alert delivery failed after retries",
			"delivery.key", key,
			"error", err,
		)
		return fmt.Errorf("delivering alert for %s: %w", key, err)
	}

	logger.Info(ctx, "alert delivered",
		"tx.hash", notice.Transaction.Hash,
		"alert.direction", notice.Match.Direction,
		"alert.address_name", notice.Match.Entry.DisplayName,
	)

	return nil
}

// deliveryKey identifies an alert: one transaction can legitimately produce
// two alerts, one per matched side.
func deliveryKey(notice Notice) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(notice.Transaction.Hash), notice.Match.Direction)
}
