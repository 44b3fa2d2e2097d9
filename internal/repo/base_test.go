package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

type ctxKey struct{}

func TestBaseDBBindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	bound := base.DB(ctx)
	require.NotNil(t, bound.Statement)
	assert.Equal(t, ctx, bound.Statement.Context)

	assert.Same(t, db, base.DB(nil))
}

func TestBaseLockedAddsRowLock(t *testing.T) {
	base := NewBase(newTestDB(t))

	locked := base.Locked(context.Background())
	lockClause, ok := locked.Statement.Clauses["FOR"]
	require.True(t, ok, "expected a FOR clause")
	locking, ok := lockClause.Expression.(clause.Locking)
	require.True(t, ok)
	assert.Equal(t, "UPDATE", locking.Strength)
}

func TestLookupTranslatesErrors(t *testing.T) {
	assert.NoError(t, Lookup(nil, "order"))

	missing := Lookup(gorm.ErrRecordNotFound, "order")
	assert.True(t, pkgerrors.IsCode(missing, pkgerrors.CodeNotFound))
	assert.Contains(t, missing.Error(), "order not found")

	cause := errors.New("connection reset")
	failed := Lookup(cause, "order")
	assert.True(t, pkgerrors.IsCode(failed, pkgerrors.CodeDependency))
	assert.ErrorIs(t, failed, cause)
}
