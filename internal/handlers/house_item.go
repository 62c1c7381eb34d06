// internal/handlers/house_item.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/larderline/larder-backend/internal/domain"
	"github.com/larderline/larder-backend/internal/i18n"
	"github.com/larderline/larder-backend/internal/services"
	"github.com/larderline/larder-backend/internal/utils"
)

type HouseItemHandler struct {
	productService *services.ProductService
}

func NewHouseItemHandler(productService *services.ProductService) *HouseItemHandler {
	return &HouseItemHandler{
		productService: productService,
	}
}

// HouseItemView is a product plus the values derived from its stock level.
type HouseItemView struct {
	HouseItem        *domain.Product    `json:"house_item"`
	StockStatus      domain.StockStatus `json:"stock_status"`
	StockDisplayText string             `json:"stock_display_text"`
	StockPercentage  int                `json:"stock_percentage"`
	NeedsReorder     bool               `json:"needs_reorder"`
	ReorderQuantity  float64            `json:"reorder_quantity"`
	FormattedPrice   string             `json:"formatted_price"`
}

func newHouseItemView(p *domain.Product) HouseItemView {
	return HouseItemView{
		HouseItem:        p,
		StockStatus:      p.StockStatus(),
		StockDisplayText: p.StockDisplayText(),
		StockPercentage:  p.StockPercentage(),
		NeedsReorder:     p.NeedsReorder(),
		ReorderQuantity:  p.ReorderQuantity(),
		FormattedPrice:   p.FormattedPrice(),
	}
}

func newHouseItemViews(products []*domain.Product) []HouseItemView {
	views := make([]HouseItemView, 0, len(products))
	for _, p := range products {
		views = append(views, newHouseItemView(p))
	}
	return views
}

type stockCountRequest struct {
	CurrentCount *float64 `json:"current_count" validate:"required"`
}

// GET /house-items
func (h *HouseItemHandler) GetHouseItems(c *gin.Context) {
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Location: c.Query("location"),
		Stock:    c.Query("stock"),
		Search:   c.Query("search"),
	}

	if activeStr := c.Query("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid active filter", nil)
			return
		}
		filter.Active = &active
	}

	products, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	views := newHouseItemViews(products)
	if params, paginate := utils.GetPaginationParams(c); paginate {
		utils.PaginatedResponse(c, utils.Paginate(views, params))
		return
	}
	utils.SuccessResponse(c, views)
}

// POST /house-items
func (h *HouseItemHandler) CreateHouseItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyHouseItemCreated),
		"house_item": newHouseItemView(product),
	})
}

// GET /house-items/:id
func (h *HouseItemHandler) GetHouseItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if product == nil {
		utils.NotFoundResponse(c, i18n.KeyResourceHouseItem)
		return
	}

	utils.SuccessResponse(c, newHouseItemView(product))
}

// PUT /house-items/:id
func (h *HouseItemHandler) UpdateHouseItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}
	req.ID = id

	product, err := h.productService.UpdateProduct(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyHouseItemUpdated),
		"house_item": newHouseItemView(product),
	})
}

// DELETE /house-items/:id
func (h *HouseItemHandler) DeleteHouseItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyHouseItemDeleted),
	})
}

// POST /house-items/:id/adjust-stock
func (h *HouseItemHandler) AdjustStock(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}
	req.ID = id

	product, err := h.productService.AdjustStock(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyHouseItemStockUpdated),
		"house_item": newHouseItemView(product),
	})
}

// PUT /house-items/:id/stock-count
func (h *HouseItemHandler) SetStockCount(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req stockCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.SetStockCount(c.Request.Context(), id, *req.CurrentCount)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyHouseItemStockUpdated),
		"house_item": newHouseItemView(product),
	})
}

// GET /inventories/summary
func (h *HouseItemHandler) GetInventorySummary(c *gin.Context) {
	summary, err := h.productService.GetInventorySummary(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, summary)
}

// GET /inventories/reorder
func (h *HouseItemHandler) GetReorderList(c *gin.Context) {
	list, err := h.productService.GetReorderList(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, list)
}

// GET /inventories/location/:location
func (h *HouseItemHandler) GetInventoryByLocation(c *gin.Context) {
	products, err := h.productService.GetProductsByLocation(c.Request.Context(), c.Param("location"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, newHouseItemViews(products))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return id, true
}
