package routes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/internal/delivery"
	"github.com/merko/merko-backend/internal/testutil"
	"github.com/merko/merko-backend/pkg/db"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/metrics"
	"github.com/merko/merko-backend/pkg/outbox"
)

var staff = authz.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (l *fakeLock) Acquire(context.Context) (string, bool, error) {
	if l.acquireErr != nil {
		return "", false, l.acquireErr
	}
	if l.held {
		return "", false, nil
	}
	l.held = true
	return "owner", true, nil
}

func (l *fakeLock) Release(context.Context, string) error {
	l.held = false
	l.releases++
	return nil
}

type reverseOrderer struct{}

func (reverseOrderer) Order(addresses []string) []string {
	out := AlphabeticalOrderer{}.Order(addresses)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func newTestService(t *testing.T, lock Locker, orderer Orderer) (*service, *gorm.DB) {
	t.Helper()
	conn := testutil.OpenDB(t)
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(conn),
		Entries: delivery.NewRepository(conn),
		Tx:      db.Wrap(conn),
		Outbox:  outbox.NewService(outbox.NewRepository(conn), nil),
		Lock:    lock,
		Orderer: orderer,
		Metrics: metrics.NewLifecycleMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 15, 0, time.UTC) }
	return impl, conn
}

func seedEntry(t *testing.T, conn *gorm.DB, address string, status enums.DeliveryStatus, createdAt time.Time) *models.DeliveryEntry {
	t.Helper()
	entry := &models.DeliveryEntry{
		ConfirmedOrderID: uuid.New(),
		MerchantName:     "Corner Shop",
		SupplierName:     "Acme",
		DeliveryAddress:  address,
		Status:           status,
		CreatedAt:        createdAt,
	}
	require.NoError(t, conn.Create(entry).Error)
	return entry
}

func TestGenerateOptimalRoute(t *testing.T) {
	lock := &fakeLock{}
	svc, conn := newTestService(t, lock, nil)
	base := time.Now().UTC().Add(-time.Hour)

	b1 := seedEntry(t, conn, "B Street 2", enums.DeliveryStatusReady, base)
	a1 := seedEntry(t, conn, "A Avenue 1", enums.DeliveryStatusReady, base.Add(time.Minute))
	b2 := seedEntry(t, conn, "B Street 2", enums.DeliveryStatusReady, base.Add(2*time.Minute))
	seedEntry(t, conn, "   ", enums.DeliveryStatusReady, base.Add(3*time.Minute))
	seedEntry(t, conn, "C Court 3", enums.DeliveryStatusOut, base.Add(4*time.Minute))

	out, err := svc.GenerateOptimalRoute(context.Background(), staff)
	require.NoError(t, err)

	assert.Equal(t, "Optimized Route - 2026-03-14T09:30:15", out.Route.Name)
	assert.Equal(t, "Distribution Center", out.Route.StartLocation)
	assert.Equal(t, "B Street 2", out.Route.EndLocation)
	assert.Equal(t, []string{"A Avenue 1", "B Street 2"}, out.Route.DeliveryAddresses)
	assert.Equal(t, enums.RouteStatusActive, out.Route.Status)
	assert.True(t, out.Route.TotalDistance.IsZero())

	require.Len(t, out.Stops, 3)
	wantEntries := []uuid.UUID{a1.ID, b1.ID, b2.ID}
	for i, stop := range out.Stops {
		assert.Equal(t, i+1, stop.StopOrder)
		assert.Equal(t, wantEntries[i], stop.DeliveryEntryID)
		assert.Equal(t, enums.RouteStopStatusPending, stop.Status)
		require.NotNil(t, stop.EstimatedArrivalTime)
		assert.Equal(t, svc.now().Add(time.Duration(i+1)*15*time.Minute), *stop.EstimatedArrivalTime)
	}

	stored, err := svc.GetRouteWithStops(context.Background(), staff, out.Route.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Stops, 3)
	assert.Equal(t, 1, stored.Stops[0].StopOrder)

	var events int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventRouteGenerated).Count(&events).Error)
	assert.EqualValues(t, 1, events)
	assert.False(t, lock.held)
	assert.Equal(t, 1, lock.releases)
}


func TestGenerateOptimalRouteSkipsCancelledItems(t *testing.T) {
	svc, conn := newTestService(t, &fakeLock{}, nil)
	base := time.Now().UTC().Add(-time.Hour)

	kept := seedEntry(t, conn, "A Avenue 1", enums.DeliveryStatusReady, base)
	withdrawn := seedEntry(t, conn, "B Street 2", enums.DeliveryStatusReady, base.Add(time.Minute))

	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		ProductID:   uuid.New(),
		Quantity:    1,
		PriceAtTime: decimal.RequireFromString("4.00"),
		Status:      enums.OrderItemStatusCancelled,
	}
	require.NoError(t, conn.Create(item).Error)
	require.NoError(t, conn.Create(&models.ConfirmedOrder{
		ID:          withdrawn.ConfirmedOrderID,
		OrderID:     item.OrderID,
		OrderItemID: item.ID,
		MerchantID:  uuid.New(),
		SupplierID:  uuid.New(),
		Status:      enums.ConfirmedOrderAssigned,
		OrderDate:   base,
		TotalAmount: item.PriceAtTime,
	}).Error)

	out, err := svc.GenerateOptimalRoute(context.Background(), staff)
	require.NoError(t, err)
	require.Len(t, out.Stops, 1)
	assert.Equal(t, kept.ID, out.Stops[0].DeliveryEntryID)
	assert.Equal(t, []string{"A Avenue 1"}, out.Route.DeliveryAddresses)
}

func TestGenerateOptimalRouteUsesOrderer(t *testing.T) {
	svc, conn := newTestService(t, &fakeLock{}, reverseOrderer{})
	seedEntry(t, conn, "A Avenue 1", enums.DeliveryStatusReady, time.Now().UTC())
	seedEntry(t, conn, "B Street 2", enums.DeliveryStatusReady, time.Now().UTC())

	out, err := svc.GenerateOptimalRoute(context.Background(), staff)
	require.NoError(t, err)
	assert.Equal(t, "B Street 2", out.Stops[0].Address)
	assert.Equal(t, "A Avenue 1", out.Route.EndLocation)
}

func TestGenerateOptimalRouteRejections(t *testing.T) {
	t.Run("no ready entries", func(t *testing.T) {
		lock := &fakeLock{}
		svc, _ := newTestService(t, lock, nil)
		_, err := svc.GenerateOptimalRoute(context.Background(), staff)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		assert.False(t, lock.held, "lock released on failure")
	})

	t.Run("only blank addresses", func(t *testing.T) {
		svc, conn := newTestService(t, &fakeLock{}, nil)
		seedEntry(t, conn, "", enums.DeliveryStatusReady, time.Now().UTC())
		_, err := svc.GenerateOptimalRoute(context.Background(), staff)
		require.Error(t, err)
		assert.Equal(t, "no valid delivery addresses found", pkgerrors.As(err).Message())
		var routes int64
		require.NoError(t, conn.Model(&models.Route{}).Count(&routes).Error)
		assert.Zero(t, routes)
	})

	t.Run("lock busy", func(t *testing.T) {
		svc, conn := newTestService(t, &fakeLock{held: true}, nil)
		seedEntry(t, conn, "A Avenue 1", enums.DeliveryStatusReady, time.Now().UTC())
		_, err := svc.GenerateOptimalRoute(context.Background(), staff)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	})

	t.Run("lock backend down", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeLock{acquireErr: errors.New("dial tcp")}, nil)
		_, err := svc.GenerateOptimalRoute(context.Background(), staff)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	})

	t.Run("merchant", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeLock{}, nil)
		_, err := svc.GenerateOptimalRoute(context.Background(), authz.Actor{UserID: uuid.New(), Role: enums.RoleMerchant})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	})
}

func TestRouteStatusStopsAndDelete(t *testing.T) {
	svc, conn := newTestService(t, &fakeLock{}, nil)
	ctx := context.Background()
	seedEntry(t, conn, "A Avenue 1", enums.DeliveryStatusReady, time.Now().UTC())
	seedEntry(t, conn, "B Street 2", enums.DeliveryStatusReady, time.Now().UTC())
	out, err := svc.GenerateOptimalRoute(ctx, staff)
	require.NoError(t, err)
	routeID := out.Route.ID

	_, err = svc.UpdateRouteStatus(ctx, staff, routeID, "paused")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	updated, err := svc.UpdateRouteStatus(ctx, staff, routeID, "completed")
	require.NoError(t, err)
	assert.Equal(t, enums.RouteStatusCompleted, updated.Status)

	active, err := svc.ListActive(ctx, staff)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.List(ctx, staff)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	stop, err := svc.UpdateStopStatus(ctx, staff, out.Stops[0].ID, "visited")
	require.NoError(t, err)
	assert.Equal(t, enums.RouteStopStatusVisited, stop.Status)
	require.NotNil(t, stop.ActualArrivalTime)
	_, err = svc.UpdateStopStatus(ctx, staff, out.Stops[0].ID, "skipped")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	_, err = svc.UpdateStopStatus(ctx, staff, out.Stops[1].ID, "lost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.DeleteRoute(ctx, staff, routeID))
	_, err = svc.GetRouteWithStops(ctx, staff, routeID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	var stops int64
	require.NoError(t, conn.Model(&models.RouteStop{}).Where("route_id = ?", routeID).Count(&stops).Error)
	assert.Zero(t, stops)

	err = svc.DeleteRoute(ctx, staff, routeID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
