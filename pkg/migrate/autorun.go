package migrate

import (
	"context"

	"github.com/merko/merko-backend/pkg/config"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations at boot when running in dev
// with MERKO_AUTO_MIGRATE set. Every binary calls it, so the run holds a
// session lock and the processes that lose the race find nothing pending.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}
	runner, err := NewRunner(sqlDB, Options{SessionLock: true})
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "source": "embedded"})
	applied, err := runner.Up(ctx)
	for _, step := range applied {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":     step.Version,
			"file":        step.Path,
			"duration_ms": step.Duration.Milliseconds(),
		}), "migration applied")
	}
	if err != nil {
		return err
	}

	version, err := runner.Version(ctx)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"applied": len(applied), "version": version}), "dev auto-migrate complete")
	return nil
}
