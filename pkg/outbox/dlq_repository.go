package outbox

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

// maxDLQErrorLen caps the stored error message in bytes.
const maxDLQErrorLen = 1024

// DLQRepository parks outbox events that will not be retried and puts them
// back on request.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

// Park copies event into the dead letter table inside tx.
func (r *DLQRepository) Park(tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !reason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown dlq reason "+string(reason))
	}
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if cause != nil {
		msg := truncateDLQError(cause.Error())
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

// Requeue moves a parked event back into the outbox with a fresh attempt
// budget. The outbox row is recreated from the parked copy when retention
// already removed it.
func (r *DLQRepository) Requeue(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	var parked models.OutboxDLQ
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ?", eventID).
		Order("failed_at DESC").
		First(&parked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "dead lettered event not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dead lettered event")
	}

	reset := tx.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ? AND published_at IS NULL", eventID).
		Updates(map[string]any{"attempt_count": 0, "last_error": nil})
	if reset.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, reset.Error, "reset outbox event")
	}
	if reset.RowsAffected == 0 {
		restored := models.OutboxEvent{
			ID:            parked.EventID,
			EventType:     parked.EventType,
			AggregateType: parked.AggregateType,
			AggregateID:   parked.AggregateID,
			Payload:       parked.Payload,
		}
		if err := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&restored).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore outbox event")
		}
	}

	if err := tx.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.OutboxDLQ{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear dead lettered event")
	}
	return nil
}

// truncateDLQError cuts message to maxDLQErrorLen bytes without splitting a
// multi-byte rune.
func truncateDLQError(message string) string {
	if len(message) <= maxDLQErrorLen {
		return message
	}
	cut := maxDLQErrorLen
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}
