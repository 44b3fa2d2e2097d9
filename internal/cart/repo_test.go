package cart

import (
	"context"
	"testing"

	"github.com/merko/merko-backend/internal/testutil"
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
)

func TestUpdateStatusOnlyLeavesActive(t *testing.T) {
	conn := testutil.OpenDB(t)
	repo := NewRepository(conn)
	merchant := testutil.MustUser(t, conn, enums.RoleMerchant, "Corner Shop")
	record := &models.Cart{UserID: merchant.ID, Status: enums.CartStatusAbandoned}
	if err := conn.Create(record).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	err := repo.UpdateStatus(context.Background(), record.ID, enums.CartStatusOrdered)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for abandoned cart, got %v", err)
	}

	var stored models.Cart
	if err := conn.First(&stored, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != enums.CartStatusAbandoned {
		t.Fatalf("status changed to %s", stored.Status)
	}
}
