package miner

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/tobias-fyi/xebec/internal/models"
)

type Pinger interface {
	Ping(ctx context.Context) (models.HealthCheckResponse, error)
}

// WaitForNode pings the node with exponential backoff until it answers or
// maxWait passes.
func WaitForNode(ctx context.Context, node Pinger, maxWait time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxWait

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		_, err := node.Ping(ctx)
		if err != nil {
			slog.Debug("miner: node not ready", "attempt", attempt, "error", err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}
