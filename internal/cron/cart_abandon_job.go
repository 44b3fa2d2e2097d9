package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/merko/merko-backend/pkg/logger"
)

const defaultCartAbandonAfter = 72 * time.Hour

type cartAbandoner interface {
	AbandonStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// CartAbandonJobParams configure the cart abandonment job.
type CartAbandonJobParams struct {
	Logger *logger.Logger
	Carts  cartAbandoner
	After  time.Duration
}

// NewCartAbandonJob marks ACTIVE carts idle for longer than After as ABANDONED.
func NewCartAbandonJob(params CartAbandonJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	after := params.After
	if after <= 0 {
		after = defaultCartAbandonAfter
	}
	return &cartAbandonJob{logg: params.Logger, carts: params.Carts, after: after}, nil
}

type cartAbandonJob struct {
	logg  *logger.Logger
	carts cartAbandoner
	after time.Duration
}

func (j *cartAbandonJob) Name() string { return "cart-abandon" }

func (j *cartAbandonJob) Run(ctx context.Context) error {
	count, err := j.carts.AbandonStale(ctx, j.after)
	if err != nil {
		return fmt.Errorf("abandon stale carts: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"idle_hours":      j.after.Hours(),
		"carts_abandoned": count,
	})
	j.logg.Info(logCtx, "stale carts abandoned")
	return nil
}
