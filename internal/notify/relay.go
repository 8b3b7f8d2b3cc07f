package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"furnit-storefront/internal/config"
	"furnit-storefront/internal/model"
	"furnit-storefront/internal/repository"
)

const (
	relayBatchSize = 20
	maxRetryDelay  = time.Hour
)

type Relay struct {
	outbox       repository.OutboxRepository
	mailer       OrderMailer
	logger       *log.Logger
	pollInterval time.Duration
	maxAttempts  int
	retryDelay   time.Duration
	sendTimeout  time.Duration
	now          func() time.Time
	wake         chan struct{}
	done         chan struct{}
}

func NewRelay(outbox repository.OutboxRepository, mailer OrderMailer, cfg *config.Notify, logger *log.Logger) *Relay {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Relay{
		outbox:       outbox,
		mailer:       mailer,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		maxAttempts:  maxAttempts,
		retryDelay:   cfg.RetryDelay,
		sendTimeout:  cfg.SendTimeout,
		now:          time.Now,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// OrderPlaced nudges the relay; the message itself is already in the outbox.
func (r *Relay) OrderPlaced(*model.Order) {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.Infof("outbox relay started, polling every %s", r.pollInterval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
		case <-r.wake:
		}
		r.drain(ctx)
	}
}

// Done is closed once Run has returned.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.ProcessBatch(ctx)
		if err != nil {
			r.logger.Errorf("outbox relay: %v", err)
			return
		}
		if n < relayBatchSize {
			return
		}
	}
}

// ProcessBatch attempts every due message once and reports how many it picked up.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	msgs, err := r.outbox.FetchDue(ctx, r.now(), relayBatchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch due outbox messages: %w", err)
	}

	for _, msg := range msgs {
		if err := r.deliver(ctx, msg); err != nil {
			r.fail(ctx, msg, err)
			continue
		}
		if err := r.outbox.MarkSent(ctx, msg.ID); err != nil {
			// the next poll resends; at-least-once
			r.logger.Errorf("mark outbox message %s sent: %v", msg.ID, err)
		}
	}
	return len(msgs), nil
}

func (r *Relay) deliver(ctx context.Context, msg *model.OutboxMessage) error {
	if msg.Kind != model.OutboxKindOrderConfirmation {
		return fmt.Errorf("unknown outbox kind %q", msg.Kind)
	}

	var order model.Order
	if err := json.Unmarshal(msg.Payload, &order); err != nil {
		return fmt.Errorf("unmarshal order payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.sendTimeout)
	defer cancel()

	return r.mailer.SendOrderConfirmation(ctx, &order)
}

func (r *Relay) fail(ctx context.Context, msg *model.OutboxMessage, cause error) {
	attempts := msg.Attempts + 1
	status := model.OutboxStatusFailed
	next := r.now().Add(r.backoff(attempts))

	if attempts >= r.maxAttempts {
		status = model.OutboxStatusDead
		r.logger.Errorf("order confirmation for %s dead after %d attempts: %v", msg.AggregateID, attempts, cause)
	} else {
		r.logger.Warnf("order confirmation for %s failed (attempt %d/%d), retry at %s: %v",
			msg.AggregateID, attempts, r.maxAttempts, next.Format(time.RFC3339), cause)
	}

	if err := r.outbox.MarkFailed(ctx, msg.ID, attempts, status, next, cause.Error()); err != nil {
		r.logger.Errorf("mark outbox message %s failed: %v", msg.ID, err)
	}
}

// backoff doubles the retry delay per attempt, capped at an hour.
func (r *Relay) backoff(attempts int) time.Duration {
	d := r.retryDelay
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}
