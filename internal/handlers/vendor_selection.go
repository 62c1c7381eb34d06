// internal/handlers/vendor_selection.go
package handlers

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/larderline/larder-backend/internal/domain"
	"github.com/larderline/larder-backend/internal/i18n"
	"github.com/larderline/larder-backend/internal/services"
	"github.com/larderline/larder-backend/internal/utils"
)

type VendorSelectionHandler struct {
	selectionService *services.VendorSelectionService
}

func NewVendorSelectionHandler(selectionService *services.VendorSelectionService) *VendorSelectionHandler {
	return &VendorSelectionHandler{
		selectionService: selectionService,
	}
}

type VendorSelectionView struct {
	VendorSelection      *domain.VendorSelection `json:"vendor_selection"`
	DisplayName          string                  `json:"display_name"`
	StrategyDisplayName  string                  `json:"strategy_display_name"`
	ConfidenceLevel      domain.ConfidenceLevel  `json:"confidence_level"`
	IsConfident          bool                    `json:"is_confident"`
	FormattedCostSavings string                  `json:"formatted_cost_savings"`
	FormattedConfidence  string                  `json:"formatted_confidence"`
	BestAlternative      *domain.Alternative     `json:"best_alternative"`
	WorstAlternative     *domain.Alternative     `json:"worst_alternative"`
}

func newVendorSelectionView(v *domain.VendorSelection) VendorSelectionView {
	return VendorSelectionView{
		VendorSelection:      v,
		DisplayName:          v.DisplayName(),
		StrategyDisplayName:  v.StrategyDisplayName(),
		ConfidenceLevel:      v.ConfidenceLevel(),
		IsConfident:          v.IsConfidentSelection(),
		FormattedCostSavings: v.FormattedCostSavings(),
		FormattedConfidence:  v.FormattedConfidenceScore(),
		BestAlternative:      v.BestAlternative(),
		WorstAlternative:     v.WorstAlternative(),
	}
}

func newVendorSelectionViews(selections []*domain.VendorSelection) []VendorSelectionView {
	views := make([]VendorSelectionView, 0, len(selections))
	for _, v := range selections {
		views = append(views, newVendorSelectionView(v))
	}
	return views
}

type overrideRequest struct {
	VendorItemID int64 `json:"vendor_item_id"`
}

// GET /vendor-selections
func (h *VendorSelectionHandler) GetVendorSelections(c *gin.Context) {
	filter := services.SelectionFilter{
		Strategy: domain.SelectionStrategy(c.Query("strategy")),
	}
	if overriddenStr := c.Query("overridden"); overriddenStr != "" {
		overridden, err := strconv.ParseBool(overriddenStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid overridden filter", nil)
			return
		}
		filter.Overridden = &overridden
	}

	selections, err := h.selectionService.ListSelections(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	views := newVendorSelectionViews(selections)
	if params, paginate := utils.GetPaginationParams(c); paginate {
		utils.PaginatedResponse(c, utils.Paginate(views, params))
		return
	}
	utils.SuccessResponse(c, views)
}

// GET /house-orders/:id/vendor-selections
func (h *VendorSelectionHandler) GetOrderSelections(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	selections, err := h.selectionService.GetVendorSelectionsForOrder(c.Request.Context(), orderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, newVendorSelectionViews(selections))
}

// GET /house-orders/:id/vendor-selection-stats
func (h *VendorSelectionHandler) GetOrderSelectionStats(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.selectionService.GetOrderSelectionStats(c.Request.Context(), orderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /house-orders/items/:itemId/vendor-selection
func (h *VendorSelectionHandler) GetItemSelection(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	selection, err := h.selectionService.GetVendorSelectionForItem(c.Request.Context(), itemID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if selection == nil {
		utils.NotFoundResponse(c, i18n.KeyResourceVendorSelection)
		return
	}
	utils.SuccessResponse(c, newVendorSelectionView(selection))
}

// POST /house-orders/items/:itemId/override-vendor-selection
func (h *VendorSelectionHandler) OverrideSelection(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, exists := utils.GetActorFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var body overrideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid), err.Error())
		return
	}

	selection, err := h.selectionService.OverrideSelection(c.Request.Context(), &services.OverrideSelectionRequest{
		ItemID:       itemID,
		VendorItemID: body.VendorItemID,
		OverriddenBy: actor,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":          i18n.T(lang, i18n.KeyVendorSelectionOverridden),
		"vendor_selection": newVendorSelectionView(selection),
	})
}

// POST /house-orders/items/:itemId/reset-vendor-selection
func (h *VendorSelectionHandler) ResetSelection(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	selection, err := h.selectionService.ResetOverride(c.Request.Context(), itemID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":          i18n.T(utils.GetLangFromContext(c), i18n.KeyVendorSelectionReset),
		"vendor_selection": newVendorSelectionView(selection),
	})
}

// GET /vendor-selections/analysis
func (h *VendorSelectionHandler) GetAnalysis(c *gin.Context) {
	analysis, err := h.selectionService.GetVendorSelectionAnalysis(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, analysis)
}

// GET /vendor-selections/best-strategy
func (h *VendorSelectionHandler) GetBestStrategy(c *gin.Context) {
	strategy, err := h.selectionService.GetBestPerformingStrategy(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"strategy":     strategy,
		"display_name": displayStrategy(strategy),
	})
}

// GET /vendor-selections/recommendations
func (h *VendorSelectionHandler) GetRecommendations(c *gin.Context) {
	recs, err := h.selectionService.GetSelectionRecommendations(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"low_confidence_selections": newVendorSelectionViews(recs.LowConfidence),
		"high_savings_selections":   newVendorSelectionViews(recs.HighSavings),
		"overridden_selections":     newVendorSelectionViews(recs.Overridden),
	})
}

// POST /vendor-selections/validate
func (h *VendorSelectionHandler) ValidateSelection(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	selection, err := domain.ParseVendorSelection(body)
	if err != nil {
		if domain.IsValidationError(err) {
			utils.HandleServiceError(c, err)
			return
		}
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid), err.Error())
		return
	}

	utils.SuccessResponse(c, h.selectionService.ValidateSelection(selection))
}

func displayStrategy(strategy domain.SelectionStrategy) string {
	if strategy == "" {
		return ""
	}
	return strategy.DisplayName()
}
