package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/logger"
)

const (
	outboxRetentionDays = 30
	// Rows that needed this many attempts are kept for investigation even
	// after they published.
	outboxMinAttempts = 5
	outboxDeleteBatch = 1000
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount, limit int) (int64, error)
}

// OutboxRetentionJobParams configure the outbox retention job. Zero values
// fall back to 30 days, 5 attempts and 1000 rows per batch.
type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository outboxRetentionRepo
	// Retention is in days.
	Retention   int
	MinAttempts int
	BatchSize   int
}

type outboxRetentionJob struct {
	logg        *logger.Logger
	db          txRunner
	repo        outboxRetentionRepo
	retention   int
	minAttempts int
	batch       int
	now         func() time.Time
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.DB == nil:
		return nil, errors.New("db runner required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository required")
	}
	return &outboxRetentionJob{
		logg:        params.Logger,
		db:          params.DB,
		repo:        params.Repository,
		retention:   orDefault(params.Retention, outboxRetentionDays),
		minAttempts: orDefault(params.MinAttempts, outboxMinAttempts),
		batch:       orDefault(params.BatchSize, outboxDeleteBatch),
		now:         time.Now,
	}, nil
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

// Run deletes published rows older than the cutoff. Each batch commits on its
// own so a large backlog never holds row locks for long; a short batch means
// the backlog is drained.
func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	var total int64
	batches := 0
	for deleted := int64(j.batch); deleted == int64(j.batch); batches++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := j.db.WithTx(ctx, func(tx *gorm.DB) (err error) {
			deleted, err = j.repo.DeletePublishedBefore(ctx, tx, cutoff, j.minAttempts, j.batch)
			return err
		})
		if err != nil {
			return fmt.Errorf("outbox retention after %d rows: %w", total, err)
		}
		total += deleted
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"min_attempts":   j.minAttempts,
		"rows_deleted":   total,
		"batches":        batches,
	}), "outbox retention cleanup complete")
	return nil
}
