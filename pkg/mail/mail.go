package mail

import (
	"context"
	"time"

	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/notify"
	"github.com/matzehuels/krampus/pkg/observability"
)

// Transport delivers one message.
type Transport interface {
	// Name identifies the transport in logs ("smtp", "file", "console").
	Name() string

	// Send delivers msg. Transient failures should be wrapped with Retryable.
	Send(ctx context.Context, msg notify.Message) error
}

// Deliver sends msgs in order and returns how many were delivered.
//
// Each message gets up to three attempts when its failure is Retryable.
// Delivery stops at the first message that still fails, reported as
// DELIVERY_FAILED, or when ctx is cancelled.
func Deliver(ctx context.Context, t Transport, msgs []notify.Message) (int, error) {
	hooks := observability.Delivery()
	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		start := time.Now()
		attempt := 0
		err := RetryWithBackoff(ctx, func() error {
			attempt++
			err := t.Send(ctx, msg)
			if err != nil {
				hooks.OnError(ctx, t.Name(), msg.To, attempt, err)
			}
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return i, ctx.Err()
			}
			return i, errors.Wrap(errors.ErrCodeDelivery, err,
				"%s: message %d of %d to %s", t.Name(), i+1, len(msgs), msg.To)
		}
		hooks.OnSent(ctx, t.Name(), msg.To, time.Since(start))
	}
	return len(msgs), nil
}
