package outbox

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/internal/testutil"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

func TestFetchSkipsRowsLockedByAnotherPublisher(t *testing.T) {
	conn := testutil.OpenPostgres(t)
	repo := NewRepository(conn)
	for i := 0; i < 3; i++ {
		row := models.OutboxEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"data":{}}`),
		}
		require.NoError(t, conn.Create(&row).Error)
	}

	first := conn.Begin()
	require.NoError(t, first.Error)
	defer first.Rollback()

	claimed, err := repo.FetchUnpublishedForPublish(first, 2, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)

	err = conn.Transaction(func(second *gorm.DB) error {
		rest, err := repo.FetchUnpublishedForPublish(second, 10, 10)
		if err != nil {
			return err
		}
		require.Len(t, rest, 1, "locked rows must be skipped")
		for _, c := range claimed {
			require.NotEqual(t, c.ID, rest[0].ID)
		}
		return nil
	})
	require.NoError(t, err)
}
