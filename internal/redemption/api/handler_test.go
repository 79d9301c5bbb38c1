package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/redemption"
	"ms-boxoffice/internal/redemption/api"
	redemptiondb "ms-boxoffice/internal/redemption/db"
	"ms-boxoffice/internal/redemption/qr"
	"ms-boxoffice/internal/utils"
)

func setupTestRouter(t *testing.T) (*chi.Mux, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range []interface{}{
		(*models.Offering)(nil),
		(*models.RedemptionUnit)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		require.NoError(t, err)
	}

	store := &redemptiondb.DB{Bun: bunDB}
	handler := api.NewHandler(redemption.NewService(store), qr.NewQRGenerator(256), new(logger.Logger))

	router := chi.NewRouter()
	router.Post("/redemptions/validate", handler.Validate)
	router.Post("/redemptions/validate-all", handler.ValidateAll)
	router.Get("/units/{ticketNumber}/qr", handler.UnitQR)

	return router, bunDB
}

func seedUnit(t *testing.T, bunDB *bun.DB, ticketNumber string) models.RedemptionUnit {
	offering := models.Offering{
		ID:                "off1",
		Title:             "Jazz Night",
		EventDate:         time.Now().AddDate(0, 1, 0),
		Price:             50.0,
		TotalQuantity:     10,
		AvailableQuantity: 8,
		Status:            models.OfferingActive,
		CreatedAt:         time.Now(),
	}
	_, err := bunDB.NewInsert().Model(&offering).On("CONFLICT DO NOTHING").Exec(context.Background())
	require.NoError(t, err)

	unit := models.RedemptionUnit{
		ID:           uuid.New().String(),
		PurchaseID:   "p1",
		OfferingID:   offering.ID,
		TicketNumber: ticketNumber,
		QRCode:       ticketNumber,
		HolderName:   "Ama Mensah",
		Status:       models.UnitUnused,
		CreatedAt:    time.Now(),
	}
	_, err = bunDB.NewInsert().Model(&unit).Exec(context.Background())
	require.NoError(t, err)
	return unit
}

func postJSON(router *chi.Mux, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) redemption.Result {
	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var result redemption.Result
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestValidateHandler(t *testing.T) {
	t.Run("Successful validation", func(t *testing.T) {
		router, bunDB := setupTestRouter(t)
		defer bunDB.Close()
		seedUnit(t, bunDB, "TKT-ABC-1-0001")

		w := postJSON(router, "/redemptions/validate", map[string]string{"code": "TKT-ABC-1-0001"})

		assert.Equal(t, http.StatusOK, w.Code)
		result := decodeResult(t, w)
		assert.Equal(t, redemption.OutcomeSuccess, result.Outcome)
		assert.Equal(t, "Jazz Night", result.Offering.Title)
	})

	t.Run("Second scan reports already used with a 200", func(t *testing.T) {
		router, bunDB := setupTestRouter(t)
		defer bunDB.Close()
		seedUnit(t, bunDB, "TKT-ABC-1-0001")

		postJSON(router, "/redemptions/validate", map[string]string{"code": "TKT-ABC-1-0001"})
		w := postJSON(router, "/redemptions/validate", map[string]string{"code": "TKT-ABC-1-0001"})

		assert.Equal(t, http.StatusOK, w.Code)
		result := decodeResult(t, w)
		assert.Equal(t, redemption.OutcomeAlreadyUsed, result.Outcome)
		assert.NotNil(t, result.Unit.UsedAt)
	})

	t.Run("Unknown code is a not_found outcome", func(t *testing.T) {
		router, bunDB := setupTestRouter(t)
		defer bunDB.Close()

		w := postJSON(router, "/redemptions/validate", map[string]string{"code": "TKT-NOPE-9-9999"})

		assert.Equal(t, http.StatusOK, w.Code)
		result := decodeResult(t, w)
		assert.Equal(t, redemption.OutcomeNotFound, result.Outcome)
	})

	t.Run("Missing code is rejected", func(t *testing.T) {
		router, bunDB := setupTestRouter(t)
		defer bunDB.Close()

		w := postJSON(router, "/redemptions/validate", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestValidateAllHandler(t *testing.T) {
	router, bunDB := setupTestRouter(t)
	defer bunDB.Close()
	seedUnit(t, bunDB, "TKT-ABC-1-0001")
	seedUnit(t, bunDB, "TKT-ABC-2-0002")

	w := postJSON(router, "/redemptions/validate-all", map[string]string{"purchase_id": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var bulk redemption.BulkResult
	require.NoError(t, json.Unmarshal(data, &bulk))
	assert.Equal(t, 2, bulk.Validated)
	assert.Equal(t, 0, bulk.AlreadyUsed)

	// Unknown purchase
	w = postJSON(router, "/redemptions/validate-all", map[string]string{"purchase_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnitQRHandler(t *testing.T) {
	router, bunDB := setupTestRouter(t)
	defer bunDB.Close()
	seedUnit(t, bunDB, "TKT-ABC-1-0001")

	req := httptest.NewRequest("GET", "/units/TKT-ABC-1-0001/qr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))

	req = httptest.NewRequest("GET", "/units/TKT-NOPE-9-9999/qr", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
