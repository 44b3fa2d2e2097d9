package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merko/merko-backend/internal/testutil"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

func TestEmitWritesEnvelope(t *testing.T) {
	conn := testutil.OpenDB(t)
	svc := NewService(NewRepository(conn), nil)
	aggregateID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: "MERCHANT"}

	err := svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Actor:         actor,
		Data:          map[string]any{"order_number": "ORD-1"},
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, aggregateID, rows[0].AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	assert.False(t, envelope.OccurredAt.IsZero())
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, actor.UserID, envelope.Actor.UserID)
	assert.JSONEq(t, `{"order_number":"ORD-1"}`, string(envelope.Data))
}

func TestEmitUsesEnvelopeIDAsRowID(t *testing.T) {
	conn := testutil.OpenDB(t)
	svc := NewService(NewRepository(conn), nil)

	require.NoError(t, svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventRouteGenerated,
		AggregateType: enums.AggregateRoute,
		AggregateID:   uuid.New(),
		Data:          map[string]int{"stops": 2},
	}))

	var row models.OutboxEvent
	require.NoError(t, conn.First(&row).Error)
	envelope, err := DecodeEnvelope(row.Payload)
	require.NoError(t, err)
	assert.Equal(t, row.ID.String(), envelope.EventID)
}

func TestEmitRejectsInvalidEvents(t *testing.T) {
	conn := testutil.OpenDB(t)
	svc := NewService(NewRepository(conn), nil)
	valid := DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Data:          map[string]string{"k": "v"},
	}

	assert.Error(t, svc.Emit(context.Background(), nil, valid))

	cases := map[string]func(e *DomainEvent){
		"unknown event type":     func(e *DomainEvent) { e.EventType = "nope" },
		"unknown aggregate type": func(e *DomainEvent) { e.AggregateType = "nope" },
		"missing aggregate id":   func(e *DomainEvent) { e.AggregateID = uuid.Nil },
		"missing data":           func(e *DomainEvent) { e.Data = nil },
		"unencodable data":       func(e *DomainEvent) { e.Data = make(chan int) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			event := valid
			mutate(&event)
			err := svc.Emit(context.Background(), conn, event)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := testutil.OpenDB(t)
	repo := NewRepository(conn)

	pending := models.OutboxEvent{EventType: enums.EventRouteGenerated, AggregateType: enums.AggregateRoute, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	exhausted := models.OutboxEvent{EventType: enums.EventRouteGenerated, AggregateType: enums.AggregateRoute, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), AttemptCount: 10}
	require.NoError(t, conn.Create(&pending).Error)
	require.NoError(t, conn.Create(&exhausted).Error)

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)

	require.NoError(t, repo.MarkFailedTx(conn, pending.ID, assert.AnError))
	var reloaded models.OutboxEvent
	require.NoError(t, conn.First(&reloaded, "id = ?", pending.ID).Error)
	assert.Equal(t, 1, reloaded.AttemptCount)
	require.NotNil(t, reloaded.LastError)

	require.NoError(t, repo.MarkPublishedTx(conn, pending.ID))
	require.NoError(t, conn.First(&reloaded, "id = ?", pending.ID).Error)
	assert.NotNil(t, reloaded.PublishedAt)
	assert.Nil(t, reloaded.LastError)

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeletePublishedBefore(t *testing.T) {
	conn := testutil.OpenDB(t)
	repo := NewRepository(conn)
	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC()

	oldPublished := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), PublishedAt: &old}
	newPublished := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), PublishedAt: &recent}
	unpublished := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	for _, row := range []*models.OutboxEvent{&oldPublished, &newPublished, &unpublished} {
		require.NoError(t, conn.Create(row).Error)
	}

	deleted, err := repo.DeletePublishedBefore(context.Background(), conn, time.Now().UTC().Add(-24*time.Hour), 5, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&remaining).Error)
	assert.EqualValues(t, 2, remaining)
}

func TestDLQParkTruncatesLongErrors(t *testing.T) {
	conn := testutil.OpenDB(t)
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	cause := errors.New(strings.Repeat("x", maxDLQErrorLen+100))
	require.NoError(t, NewDLQRepository(conn).Park(conn, event, enums.OutboxDLQReasonMaxAttempts, cause))

	var stored models.OutboxDLQ
	require.NoError(t, conn.First(&stored).Error)
	require.NotNil(t, stored.ErrorMessage)
	assert.Len(t, *stored.ErrorMessage, maxDLQErrorLen)
}
