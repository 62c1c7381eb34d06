// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/larderline/larder-backend/internal/database"
	"github.com/larderline/larder-backend/internal/i18n"
	"github.com/larderline/larder-backend/internal/middleware"
	"github.com/larderline/larder-backend/internal/repository"
	"github.com/larderline/larder-backend/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

type HandlersTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	require.NoError(suite.T(), i18n.Initialize("en"))
}

func (suite *HandlersTestSuite) SetupTest() {
	products := repository.NewMemoryProductRepository()
	selections := repository.NewMemoryVendorSelectionRepository()
	require.NoError(suite.T(), database.SeedInitialData(context.Background(), products, selections))

	houseItems := NewHouseItemHandler(services.NewProductService(products, nil))
	vendorSelections := NewVendorSelectionHandler(services.NewVendorSelectionService(selections, nil))

	r := gin.New()
	r.Use(middleware.I18nMiddleware("en"))
	// Stand-in for AuthRequired on the mutating selection routes.
	actor := func(c *gin.Context) {
		c.Set("user_id", "staff-1")
		c.Set("user_name", "Chef Ana")
		c.Next()
	}

	v1 := r.Group("/v1")
	v1.GET("/house-items", houseItems.GetHouseItems)
	v1.POST("/house-items", houseItems.CreateHouseItem)
	v1.GET("/house-items/:id", houseItems.GetHouseItem)
	v1.PUT("/house-items/:id", houseItems.UpdateHouseItem)
	v1.DELETE("/house-items/:id", houseItems.DeleteHouseItem)
	v1.POST("/house-items/:id/adjust-stock", houseItems.AdjustStock)
	v1.PUT("/house-items/:id/stock-count", houseItems.SetStockCount)
	v1.GET("/inventories/summary", houseItems.GetInventorySummary)
	v1.GET("/inventories/reorder", houseItems.GetReorderList)
	v1.GET("/inventories/location/:location", houseItems.GetInventoryByLocation)
	v1.GET("/house-orders/:id/vendor-selections", vendorSelections.GetOrderSelections)
	v1.GET("/house-orders/:id/vendor-selection-stats", vendorSelections.GetOrderSelectionStats)
	v1.GET("/house-orders/items/:itemId/vendor-selection", vendorSelections.GetItemSelection)
	v1.POST("/house-orders/items/:itemId/override-vendor-selection", actor, vendorSelections.OverrideSelection)
	v1.POST("/house-orders/items/:itemId/reset-vendor-selection", actor, vendorSelections.ResetSelection)
	v1.POST("/anonymous/items/:itemId/override-vendor-selection", vendorSelections.OverrideSelection)
	v1.GET("/vendor-selections", vendorSelections.GetVendorSelections)
	v1.GET("/vendor-selections/analysis", vendorSelections.GetAnalysis)
	v1.GET("/vendor-selections/best-strategy", vendorSelections.GetBestStrategy)
	v1.GET("/vendor-selections/recommendations", vendorSelections.GetRecommendations)
	v1.POST("/vendor-selections/validate", vendorSelections.ValidateSelection)
	suite.router = r
}

func (suite *HandlersTestSuite) request(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (suite *HandlersTestSuite) decode(raw json.RawMessage, target interface{}) {
	require.NoError(suite.T(), json.Unmarshal(raw, target))
}

func (suite *HandlersTestSuite) TestListHouseItems() {
	w, env := suite.request(http.MethodGet, "/v1/house-items", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.True(suite.T(), env.Success)

	var items []map[string]interface{}
	suite.decode(env.Data, &items)
	assert.Len(suite.T(), items, 8)

	_, env = suite.request(http.MethodGet, "/v1/house-items?stock=reorder&active=true", nil)
	suite.decode(env.Data, &items)
	require.Len(suite.T(), items, 4) // tomatoes, milk, eggs, chicken
	first := items[0]["house_item"].(map[string]interface{})
	assert.Equal(suite.T(), "Roma Tomatoes", first["name"])
	assert.Equal(suite.T(), "critical", items[0]["stock_status"])

	w, env = suite.request(http.MethodGet, "/v1/house-items?page=2&limit=3", nil)
	assert.Equal(suite.T(), "8", w.Header().Get("X-Total-Count"))
	suite.decode(env.Data, &items)
	assert.Len(suite.T(), items, 3)
	assert.Contains(suite.T(), string(env.Meta), `"total_pages":3`)

	w, env = suite.request(http.MethodGet, "/v1/house-items?stock=plenty", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, _ = suite.request(http.MethodGet, "/v1/house-items?active=maybe", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestHouseItemLifecycle() {
	w, env := suite.request(http.MethodPost, "/v1/house-items", map[string]interface{}{
		"name":               "Basil",
		"price":              2.5,
		"storage_location":   "Walk-in Cooler",
		"inventory_category": "Produce",
		"tracking_unit":      "each",
		"par_level":          10,
		"current_count":      4,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		HouseItem HouseItemViewJSON `json:"house_item"`
	}
	suite.decode(env.Data, &created)
	id := created.HouseItem.HouseItem.ID
	assert.Equal(suite.T(), "critical", created.HouseItem.StockStatus)
	assert.True(suite.T(), created.HouseItem.HouseItem.Active)

	w, env = suite.request(http.MethodPost, "/v1/house-items/"+itoa(id)+"/adjust-stock", map[string]interface{}{"adjustment": 3, "reason": "delivery"})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(env.Data, &created)
	assert.Equal(suite.T(), 7.0, created.HouseItem.HouseItem.CurrentCount)
	assert.Equal(suite.T(), "low_stock", created.HouseItem.StockStatus)

	w, env = suite.request(http.MethodPost, "/v1/house-items/"+itoa(id)+"/adjust-stock", map[string]interface{}{"adjustment": -30})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, env = suite.request(http.MethodPut, "/v1/house-items/"+itoa(id)+"/stock-count", map[string]interface{}{"current_count": 25})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(env.Data, &created)
	assert.Equal(suite.T(), "overstocked", created.HouseItem.StockStatus)

	w, _ = suite.request(http.MethodPut, "/v1/house-items/"+itoa(id)+"/stock-count", map[string]interface{}{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, env = suite.request(http.MethodPut, "/v1/house-items/"+itoa(id), map[string]interface{}{"name": "Thai Basil", "tracking_unit": "bag"})
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(env.Data, &created)
	assert.Equal(suite.T(), "Thai Basil", created.HouseItem.HouseItem.Name)
	assert.Equal(suite.T(), "bag", created.HouseItem.HouseItem.TrackingUnit)

	w, _ = suite.request(http.MethodDelete, "/v1/house-items/"+itoa(id), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, env = suite.request(http.MethodGet, "/v1/house-items/"+itoa(id), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "House item not found", env.Error.Message)

	w, env = suite.request(http.MethodDelete, "/v1/house-items/"+itoa(id), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", env.Error.Code)
}

func (suite *HandlersTestSuite) TestCreateHouseItemValidation() {
	w, env := suite.request(http.MethodPost, "/v1/house-items", map[string]interface{}{
		"name":          "",
		"price":         -1,
		"tracking_unit": "crate",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, env = suite.request(http.MethodPost, "/v1/house-items", "{not json")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "BAD_REQUEST", env.Error.Code)

	w, _ = suite.request(http.MethodGet, "/v1/house-items/abc", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestInventoryEndpoints() {
	_, env := suite.request(http.MethodGet, "/v1/inventories/summary", nil)
	var summary map[string]interface{}
	suite.decode(env.Data, &summary)
	assert.Equal(suite.T(), 8.0, summary["total_products"])
	assert.Equal(suite.T(), 1.0, summary["out_of_stock_count"])

	_, env = suite.request(http.MethodGet, "/v1/inventories/reorder", nil)
	var list struct {
		Lines []struct {
			Quantity float64 `json:"quantity"`
		} `json:"lines"`
	}
	suite.decode(env.Data, &list)
	assert.Len(suite.T(), list.Lines, 4)

	_, env = suite.request(http.MethodGet, "/v1/inventories/location/dry%20storage", nil)
	var items []map[string]interface{}
	suite.decode(env.Data, &items)
	assert.Len(suite.T(), items, 3)
}

func (suite *HandlersTestSuite) TestOverrideFlow() {
	w, env := suite.request(http.MethodPost, "/v1/house-orders/items/1/override-vendor-selection", map[string]interface{}{"vendor_item_id": 103})
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var result struct {
		VendorSelection struct {
			VendorSelection map[string]interface{} `json:"vendor_selection"`
		} `json:"vendor_selection"`
	}
	suite.decode(env.Data, &result)
	assert.Equal(suite.T(), true, result.VendorSelection.VendorSelection["is_overridden"])
	assert.Equal(suite.T(), "Chef Ana", result.VendorSelection.VendorSelection["overridden_by"])
	assert.Equal(suite.T(), 103.0, result.VendorSelection.VendorSelection["vendor_item_id"])

	w, env = suite.request(http.MethodPost, "/v1/house-orders/items/1/override-vendor-selection", map[string]interface{}{"vendor_item_id": 999})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Equal(suite.T(), "DOMAIN_RULE_VIOLATION", env.Error.Code)

	w, _ = suite.request(http.MethodPost, "/v1/house-orders/items/77/override-vendor-selection", map[string]interface{}{"vendor_item_id": 103})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w, _ = suite.request(http.MethodPost, "/v1/anonymous/items/1/override-vendor-selection", map[string]interface{}{"vendor_item_id": 102})
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w, _ = suite.request(http.MethodPost, "/v1/house-orders/items/1/reset-vendor-selection", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, env = suite.request(http.MethodPost, "/v1/house-orders/items/1/reset-vendor-selection", nil)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Equal(suite.T(), "selection is not overridden", env.Error.Message)
}

func (suite *HandlersTestSuite) TestSelectionQueries() {
	_, env := suite.request(http.MethodGet, "/v1/house-orders/1001/vendor-selections", nil)
	var views []map[string]interface{}
	suite.decode(env.Data, &views)
	require.Len(suite.T(), views, 2)
	assert.Equal(suite.T(), "high", views[0]["confidence_level"])
	assert.Equal(suite.T(), "$64.25", views[0]["formatted_cost_savings"])

	_, env = suite.request(http.MethodGet, "/v1/house-orders/1001/vendor-selection-stats", nil)
	var stats map[string]interface{}
	suite.decode(env.Data, &stats)
	assert.Equal(suite.T(), 2.0, stats["total_items"])
	assert.Equal(suite.T(), 2.0, stats["selections_with_alternatives"])

	w, _ := suite.request(http.MethodGet, "/v1/house-orders/items/42/vendor-selection", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	_, env = suite.request(http.MethodGet, "/v1/vendor-selections?strategy=lowest_price", nil)
	suite.decode(env.Data, &views)
	assert.Len(suite.T(), views, 1)

	w, _ = suite.request(http.MethodGet, "/v1/vendor-selections?strategy=cheapest", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	_, env = suite.request(http.MethodGet, "/v1/vendor-selections/best-strategy", nil)
	var best map[string]string
	suite.decode(env.Data, &best)
	assert.Equal(suite.T(), "lowest_price", best["strategy"])
	assert.Equal(suite.T(), "Lowest Price", best["display_name"])

	_, env = suite.request(http.MethodGet, "/v1/vendor-selections/analysis", nil)
	var analysis map[string]interface{}
	suite.decode(env.Data, &analysis)
	assert.Equal(suite.T(), 3.0, analysis["total_selections"])
	assert.Equal(suite.T(), map[string]interface{}{"lowest_price": 1.0, "best_value": 1.0, "preferred_vendor": 1.0}, analysis["strategy_distribution"])

	_, env = suite.request(http.MethodGet, "/v1/vendor-selections/recommendations", nil)
	var recs map[string][]map[string]interface{}
	suite.decode(env.Data, &recs)
	require.Len(suite.T(), recs["low_confidence_selections"], 1, "0.68 is medium tier")
	assert.Equal(suite.T(), "low", recs["low_confidence_selections"][0]["confidence_level"])
	assert.Len(suite.T(), recs["high_savings_selections"], 1)
	assert.Empty(suite.T(), recs["overridden_selections"])
}

func (suite *HandlersTestSuite) TestValidateSelectionEndpoint() {
	w, env := suite.request(http.MethodPost, "/v1/vendor-selections/validate", `{
		"house_order_item_id": "5",
		"vendor_item_id": 9,
		"selection_reason": {"strategy": "best_value", "reason": "", "confidence_score": "0.3"}
	}`)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var result services.SelectionValidation
	suite.decode(env.Data, &result)
	assert.False(suite.T(), result.IsValid)
	assert.Equal(suite.T(), []string{"Confidence score is too low", "No alternatives available"}, result.Errors)

	w, env = suite.request(http.MethodPost, "/v1/vendor-selections/validate", `{"vendor_item_id": 9}`)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)

	w, env = suite.request(http.MethodPost, "/v1/vendor-selections/validate", `[1,2]`)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "BAD_REQUEST", env.Error.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

// HouseItemViewJSON mirrors the wire shape of HouseItemView for decoding in tests.
type HouseItemViewJSON struct {
	HouseItem struct {
		ID           int64   `json:"id"`
		Name         string  `json:"name"`
		Active       bool    `json:"active"`
		TrackingUnit string  `json:"tracking_unit"`
		CurrentCount float64 `json:"current_count"`
	} `json:"house_item"`
	StockStatus string `json:"stock_status"`
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
