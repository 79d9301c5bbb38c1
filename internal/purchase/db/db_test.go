package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/purchase/db"
	"ms-boxoffice/internal/redemption"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Purchase)(nil),
		(*models.RedemptionUnit)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func testPurchase(quantity int) models.Purchase {
	return models.Purchase{
		ID:               uuid.New().String(),
		OfferingID:       uuid.New().String(),
		CustomerName:     "Ama Mensah",
		CustomerEmail:    "ama@example.com",
		CustomerPhone:    "+233200000000",
		Quantity:         quantity,
		TotalAmount:      float64(quantity) * 50.0,
		PaymentReference: "ref_" + uuid.New().String(),
		PaymentStatus:    models.PaymentCompleted,
		AccessToken:      uuid.New().String(),
		CreatedAt:        time.Now(),
	}
}

func TestCreatePurchaseWithUnits(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	purchase := testPurchase(3)
	units := redemption.MintUnits("TKT", purchase)
	require.Len(t, units, 3)

	err := store.CreatePurchaseWithUnits(purchase, units)
	assert.NoError(t, err)

	// Exactly quantity units exist, all unused
	stored, err := store.GetUnitsByPurchase(purchase.ID)
	assert.NoError(t, err)
	assert.Len(t, stored, 3)
	for _, unit := range stored {
		assert.Equal(t, models.UnitUnused, unit.Status)
		assert.Equal(t, purchase.OfferingID, unit.OfferingID)
		assert.Equal(t, unit.TicketNumber, unit.QRCode)
	}
}

func TestCreatePurchaseRollsBackOnUnitConflict(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	first := testPurchase(1)
	firstUnits := redemption.MintUnits("TKT", first)
	require.NoError(t, store.CreatePurchaseWithUnits(first, firstUnits))

	// Second purchase whose unit collides on ticket_number: the whole
	// transaction must fail, leaving no purchase row behind.
	second := testPurchase(1)
	collidingUnits := redemption.MintUnits("TKT", second)
	collidingUnits[0].TicketNumber = firstUnits[0].TicketNumber
	collidingUnits[0].QRCode = firstUnits[0].QRCode

	err := store.CreatePurchaseWithUnits(second, collidingUnits)
	assert.Error(t, err)

	stored, err := store.GetPurchaseByReference(second.PaymentReference)
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestGetPurchaseByReference(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	purchase := testPurchase(2)
	require.NoError(t, store.CreatePurchaseWithUnits(purchase, redemption.MintUnits("TKT", purchase)))

	// Test case: hit
	found, err := store.GetPurchaseByReference(purchase.PaymentReference)
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, purchase.ID, found.ID)

	// Test case: miss comes back as nil, nil
	missing, err := store.GetPurchaseByReference("ref_unknown")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetPurchaseByAccessToken(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	purchase := testPurchase(1)
	require.NoError(t, store.CreatePurchaseWithUnits(purchase, redemption.MintUnits("TKT", purchase)))

	found, err := store.GetPurchaseByAccessToken(purchase.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, purchase.ID, found.ID)

	_, err = store.GetPurchaseByAccessToken("nope")
	assert.Error(t, err)
}

func TestUpdatePaymentStatusSetOnce(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	purchase := testPurchase(1)
	purchase.PaymentStatus = models.PaymentPending
	require.NoError(t, store.CreatePurchaseWithUnits(purchase, redemption.MintUnits("TKT", purchase)))

	applied, err := store.UpdatePaymentStatus(purchase.ID, models.PaymentCompleted)
	assert.NoError(t, err)
	assert.True(t, applied)

	// The transition only lands once
	applied, err = store.UpdatePaymentStatus(purchase.ID, models.PaymentFailed)
	assert.NoError(t, err)
	assert.False(t, applied)

	current, err := store.GetPurchaseByID(purchase.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, current.PaymentStatus)
}
