package usecase

import (
	"context"
	"time"

	"github.com/aq2208/tableorder/internal/logging"
)

type OutboxEntry struct {
	ID       int64
	Channel  string
	Payload  []byte
	Attempts int
}

type OutboxSource interface {
	FetchPending(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkSent(ctx context.Context, id int64) error
	MarkRetry(ctx context.Context, id int64, attempts int, maxAttempts int) error
}

type EventPublisher interface {
	Publish(ctx context.Context, channel string, body []byte) error
}

const outboxMaxAttempts = 10

// OutboxRelay drains the outbox to the broker.
type OutboxRelay struct {
	src      OutboxSource
	pub      EventPublisher
	interval time.Duration
	batch    int
}

func NewOutboxRelay(src OutboxSource, pub EventPublisher, interval time.Duration, batch int) *OutboxRelay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 50
	}
	return &OutboxRelay{src: src, pub: pub, interval: interval, batch: batch}
}

// Run polls until ctx is done.
func (r *OutboxRelay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			logging.FromCtx(ctx).Warn("outbox drain failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Drain publishes one batch and returns how many rows were sent.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	entries, err := r.src.FetchPending(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	lg := logging.FromCtx(ctx)
	sent := 0
	for _, e := range entries {
		if err := r.pub.Publish(ctx, e.Channel, e.Payload); err != nil {
			lg.Warn("outbox publish failed", "id", e.ID, "attempt", e.Attempts+1, "err", err)
			if err := r.src.MarkRetry(ctx, e.ID, e.Attempts+1, outboxMaxAttempts); err != nil {
				return sent, err
			}
			continue
		}
		if err := r.src.MarkSent(ctx, e.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
