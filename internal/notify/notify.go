// Package notify delivers order confirmations after an order has been persisted.
//
// Direct sends once in the background and forgets. Relay drains the outbox written in the
// order's transaction and retries with backoff until the message is sent or declared dead.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"furnit-storefront/internal/model"
)

// OrderMailer is the slice of the mailer the notifiers need.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, order *model.Order) error
}

type Direct struct {
	mailer  OrderMailer
	timeout time.Duration
	logger  *log.Logger
	wg      sync.WaitGroup
}

func NewDirect(mailer OrderMailer, timeout time.Duration, logger *log.Logger) *Direct {
	return &Direct{
		mailer:  mailer,
		timeout: timeout,
		logger:  logger,
	}
}

// OrderPlaced makes a single bounded attempt in the background; failures are logged only.
func (d *Direct) OrderPlaced(order *model.Order) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.SendOrderConfirmation(ctx, order); err != nil {
			d.logger.Warnf("order confirmation for %s not delivered: %v", order.ID, err)
		}
	}()
}

// Wait blocks until in-flight sends finish; used on shutdown.
func (d *Direct) Wait() {
	d.wg.Wait()
}
