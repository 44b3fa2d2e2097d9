package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merko/merko-backend/pkg/env"
	"github.com/merko/merko-backend/pkg/migrate"
)

const postgresImage = "postgres:16-alpine"

// IntegrationEnabled reports whether Docker backed tests should run. They
// need MERKO_INTEGRATION=1 and are always skipped under -short.
func IntegrationEnabled() bool {
	return !testing.Short() && env.Bool("MERKO_INTEGRATION", false)
}

// OpenPostgres starts a throwaway Postgres container, applies the embedded
// migrations and returns a connection to it. The container is removed when
// the test finishes.
func OpenPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if !IntegrationEnabled() {
		t.Skip("set MERKO_INTEGRATION=1 to run postgres integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("merko"),
		tcpostgres.WithUsername("merko"),
		tcpostgres.WithPassword("merko"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := migrate.Up(ctx, sqlDB); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return conn
}
