package db_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-boxoffice/internal/inventory/db"
	"ms-boxoffice/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// A single connection keeps every goroutine on the same in-memory
	// database.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Offering)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create offerings table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func insertOffering(t *testing.T, store *db.DB, total int) models.Offering {
	offering := models.Offering{
		ID:                uuid.New().String(),
		Title:             "Jazz Night",
		EventDate:         time.Now().AddDate(0, 1, 0),
		EventTime:         "19:00",
		Venue:             "Main Hall",
		Price:             50.0,
		TotalQuantity:     total,
		AvailableQuantity: total,
		Status:            models.OfferingActive,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, store.CreateOffering(offering))
	return offering
}

func TestReserveQuantityScenario(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	offering := insertOffering(t, store, 5)

	// Test case: reserve 2 of 5
	granted, err := store.ReserveQuantity(offering.ID, 2)
	assert.NoError(t, err)
	assert.True(t, granted)

	current, err := store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, current.AvailableQuantity)
	assert.Equal(t, models.OfferingActive, current.Status)

	// Test case: reserve the remaining 3, offering sells out
	granted, err = store.ReserveQuantity(offering.ID, 3)
	assert.NoError(t, err)
	assert.True(t, granted)

	current, err = store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, current.AvailableQuantity)
	assert.Equal(t, models.OfferingSoldOut, current.Status)

	// Test case: reserve against a sold-out offering fails cleanly
	granted, err = store.ReserveQuantity(offering.ID, 1)
	assert.NoError(t, err)
	assert.False(t, granted)

	current, err = store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, current.AvailableQuantity)
}

func TestReserveQuantityInsufficient(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	offering := insertOffering(t, store, 2)

	// Asking for more than remains must not mutate anything
	granted, err := store.ReserveQuantity(offering.ID, 3)
	assert.NoError(t, err)
	assert.False(t, granted)

	current, err := store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, current.AvailableQuantity)
	assert.Equal(t, models.OfferingActive, current.Status)
}

func TestReserveQuantityInactiveOffering(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	offering := insertOffering(t, store, 5)
	require.NoError(t, store.DeactivateOffering(offering.ID))

	granted, err := store.ReserveQuantity(offering.ID, 1)
	assert.NoError(t, err)
	assert.False(t, granted)
}

func TestReserveQuantityConcurrentNoOversell(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	offering := insertOffering(t, store, 10)

	// 5 concurrent reservations of 3 ask for 15 in total; only three
	// can fit.
	var wg sync.WaitGroup
	grantedCount := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, err := store.ReserveQuantity(offering.ID, 3)
			assert.NoError(t, err)
			grantedCount <- granted
		}()
	}
	wg.Wait()
	close(grantedCount)

	granted := 0
	for ok := range grantedCount {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 3, granted, "exactly 3 reservations of 3 fit into 10")

	current, err := store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, current.AvailableQuantity)
	assert.GreaterOrEqual(t, current.AvailableQuantity, 0)
}

func TestReleaseQuantity(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	offering := insertOffering(t, store, 3)

	granted, err := store.ReserveQuantity(offering.ID, 3)
	require.NoError(t, err)
	require.True(t, granted)

	// Release reactivates a sold-out offering
	require.NoError(t, store.ReleaseQuantity(offering.ID, 3))

	current, err := store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, current.AvailableQuantity)
	assert.Equal(t, models.OfferingActive, current.Status)

	// A second release must clamp at total_quantity
	require.NoError(t, store.ReleaseQuantity(offering.ID, 3))

	current, err = store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, current.AvailableQuantity)
}

func TestDeactivateOffering(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	offering := insertOffering(t, store, 5)
	require.NoError(t, store.DeactivateOffering(offering.ID))

	current, err := store.GetOfferingByID(offering.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OfferingInactive, current.Status)
	// Quantities survive a soft delete
	assert.Equal(t, 5, current.AvailableQuantity)
}
