// internal/domain/vendor_selection.go
package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// SelectionStrategy is the rule the resolver used to pick a vendor item.
type SelectionStrategy string

const (
	StrategyLowestPrice          SelectionStrategy = "lowest_price"
	StrategyBestValue            SelectionStrategy = "best_value"
	StrategyPreferredVendor      SelectionStrategy = "preferred_vendor"
	StrategyDeliveryOptimization SelectionStrategy = "delivery_optimization"
)

var validStrategies = []SelectionStrategy{
	StrategyLowestPrice,
	StrategyBestValue,
	StrategyPreferredVendor,
	StrategyDeliveryOptimization,
}

func (s SelectionStrategy) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SelectionStrategy.
func (s SelectionStrategy) IsValid() bool {
	for _, candidate := range validStrategies {
		if candidate == s {
			return true
		}
	}
	return false
}

// DisplayName is the human label for the strategy.
func (s SelectionStrategy) DisplayName() string {
	switch s {
	case StrategyLowestPrice:
		return "Lowest Price"
	case StrategyBestValue:
		return "Best Value"
	case StrategyPreferredVendor:
		return "Preferred Vendor"
	case StrategyDeliveryOptimization:
		return "Delivery Optimization"
	default:
		return "Unknown Strategy"
	}
}

// ConfidenceLevel buckets a confidence score for display and analytics.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// The tier thresholds and the confident-selection gate are separate cut lines.
const (
	HighConfidenceThreshold     = 0.8
	MediumConfidenceThreshold   = 0.6
	ConfidentSelectionThreshold = 0.7
)

// ConfidenceLevelFor maps a score onto its tier.
func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= HighConfidenceThreshold:
		return ConfidenceHigh
	case score >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type SelectionReason struct {
	Strategy        SelectionStrategy `json:"strategy"`
	Reason          string            `json:"reason"`
	ConfidenceScore float64           `json:"confidence_score"`
}

type Vendor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type VendorItem struct {
	ID           int64   `json:"id"`
	ProductName  string  `json:"product_name"`
	PricePerCase float64 `json:"price_per_case"`
	Vendor       Vendor  `json:"vendor"`
}

// Alternative is a competing vendor item; CostDifference is relative to the chosen item.
type Alternative struct {
	VendorItemID   int64      `json:"vendor_item_id"`
	CostDifference float64    `json:"cost_difference"`
	VendorItem     VendorItem `json:"vendor_item"`
}

// VendorSelection is one resolved vendor choice for a house order item.
type VendorSelection struct {
	id               int64
	houseOrderID     int64
	houseOrderItemID int64
	vendorItemID     int64
	selectionReason  SelectionReason
	costSavings      float64
	alternatives     []Alternative
	isOverridden     bool
	overriddenBy     string
	overriddenAt     *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

type VendorSelectionParams struct {
	ID               int64
	HouseOrderID     int64
	HouseOrderItemID int64
	VendorItemID     int64
	SelectionReason  SelectionReason
	CostSavings      float64
	Alternatives     []Alternative
	IsOverridden     bool
	OverriddenBy     string
	OverriddenAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewVendorSelection builds a VendorSelection as handed over by the resolver.
func NewVendorSelection(params VendorSelectionParams) (*VendorSelection, error) {
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}
	updatedAt := params.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	v := &VendorSelection{
		id:               params.ID,
		houseOrderID:     params.HouseOrderID,
		houseOrderItemID: params.HouseOrderItemID,
		vendorItemID:     params.VendorItemID,
		selectionReason:  params.SelectionReason,
		costSavings:      params.CostSavings,
		alternatives:     copyAlternatives(params.Alternatives),
		isOverridden:     params.IsOverridden,
		overriddenBy:     params.OverriddenBy,
		overriddenAt:     copyTime(params.OverriddenAt),
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}

	if err := v.validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *VendorSelection) ID() int64 { return v.id }
func (v *VendorSelection) HouseOrderID() int64 { return v.houseOrderID }
func (v *VendorSelection) HouseOrderItemID() int64 { return v.houseOrderItemID }
func (v *VendorSelection) VendorItemID() int64 { return v.vendorItemID }
func (v *VendorSelection) SelectionReason() SelectionReason { return v.selectionReason }
func (v *VendorSelection) ConfidenceScore() float64 { return v.selectionReason.ConfidenceScore }
func (v *VendorSelection) Strategy() SelectionStrategy { return v.selectionReason.Strategy }
func (v *VendorSelection) CostSavings() float64 { return v.costSavings }
func (v *VendorSelection) Alternatives() []Alternative { return copyAlternatives(v.alternatives) }
func (v *VendorSelection) IsOverridden() bool { return v.isOverridden }
func (v *VendorSelection) OverriddenBy() string { return v.overriddenBy }
func (v *VendorSelection) OverriddenAt() *time.Time { return copyTime(v.overriddenAt) }
func (v *VendorSelection) CreatedAt() time.Time { return v.createdAt }
func (v *VendorSelection) UpdatedAt() time.Time { return v.updatedAt }

func (v *VendorSelection) Params() VendorSelectionParams {
	return VendorSelectionParams{
		ID:               v.id,
		HouseOrderID:     v.houseOrderID,
		HouseOrderItemID: v.houseOrderItemID,
		VendorItemID:     v.vendorItemID,
		SelectionReason:  v.selectionReason,
		CostSavings:      v.costSavings,
		Alternatives:     v.Alternatives(),
		IsOverridden:     v.isOverridden,
		OverriddenBy:     v.overriddenBy,
		OverriddenAt:     v.OverriddenAt(),
		CreatedAt:        v.createdAt,
		UpdatedAt:        v.updatedAt,
	}
}

func (v *VendorSelection) Clone() *VendorSelection {
	c := *v
	c.alternatives = copyAlternatives(v.alternatives)
	c.overriddenAt = copyTime(v.overriddenAt)
	return &c
}

// WithID returns a copy carrying the identity assigned by a repository.
func (v *VendorSelection) WithID(id int64) *VendorSelection {
	c := v.Clone()
	c.id = id
	return c
}

func (v *VendorSelection) touch() {
	v.updatedAt = now()
}

// OverrideSelection switches to another vendor item that was already evaluated as an alternative.
func (v *VendorSelection) OverrideSelection(vendorItemID int64, overriddenBy string) error {
	if v.vendorItemID == vendorItemID {
		return NewDomainError("cannot override to the same vendor item")
	}
	if v.findAlternative(vendorItemID) < 0 {
		return NewDomainError("selected vendor item is not available as an alternative")
	}

	at := now()
	v.vendorItemID = vendorItemID
	v.isOverridden = true
	v.overriddenBy = overriddenBy
	v.overriddenAt = &at
	v.updatedAt = at
	return nil
}

// ResetOverride clears the override flags. The vendor item chosen by the override stays in place.
func (v *VendorSelection) ResetOverride() error {
	if !v.isOverridden {
		return NewDomainError("selection is not overridden")
	}
	v.isOverridden = false
	v.overriddenBy = ""
	v.overriddenAt = nil
	v.touch()
	return nil
}

func (v *VendorSelection) AddAlternative(alt Alternative) error {
	if v.findAlternative(alt.VendorItemID) >= 0 {
		return NewDomainError(fmt.Sprintf("alternative %d already exists", alt.VendorItemID))
	}
	v.alternatives = append(v.alternatives, alt)
	v.touch()
	return nil
}

func (v *VendorSelection) RemoveAlternative(vendorItemID int64) error {
	idx := v.findAlternative(vendorItemID)
	if idx < 0 {
		return NewDomainError(fmt.Sprintf("alternative %d not found", vendorItemID))
	}
	v.alternatives = append(v.alternatives[:idx:idx], v.alternatives[idx+1:]...)
	v.touch()
	return nil
}

func (v *VendorSelection) UpdateCostSavings(savings float64) error {
	if err := requireNonNegative("cost_savings", savings); err != nil {
		return err
	}
	v.costSavings = savings
	v.touch()
	return nil
}

// BestAlternative is the alternative with the lowest cost difference; the first one wins ties.
func (v *VendorSelection) BestAlternative() *Alternative {
	if len(v.alternatives) == 0 {
		return nil
	}
	best := v.alternatives[0]
	for _, alt := range v.alternatives[1:] {
		if alt.CostDifference < best.CostDifference {
			best = alt
		}
	}
	return &best
}

// WorstAlternative is the alternative with the highest cost difference; the first one wins ties.
func (v *VendorSelection) WorstAlternative() *Alternative {
	if len(v.alternatives) == 0 {
		return nil
	}
	worst := v.alternatives[0]
	for _, alt := range v.alternatives[1:] {
		if alt.CostDifference > worst.CostDifference {
			worst = alt
		}
	}
	return &worst
}

func (v *VendorSelection) AlternativeCount() int {
	return len(v.alternatives)
}

func (v *VendorSelection) HasAlternatives() bool {
	return len(v.alternatives) > 0
}

func (v *VendorSelection) ConfidenceLevel() ConfidenceLevel {
	return ConfidenceLevelFor(v.selectionReason.ConfidenceScore)
}

func (v *VendorSelection) IsConfidentSelection() bool {
	return v.selectionReason.ConfidenceScore >= ConfidentSelectionThreshold
}

func (v *VendorSelection) DisplayName() string {
	return fmt.Sprintf("Vendor Selection for Order Item #%d", v.houseOrderItemID)
}

func (v *VendorSelection) StrategyDisplayName() string {
	return v.selectionReason.Strategy.DisplayName()
}

func (v *VendorSelection) FormattedCostSavings() string {
	return "$" + decimal.NewFromFloat(v.costSavings).StringFixed(2)
}

func (v *VendorSelection) FormattedConfidenceScore() string {
	return fmt.Sprintf("%d%%", int(math.Round(v.selectionReason.ConfidenceScore*100)))
}

func (v *VendorSelection) findAlternative(vendorItemID int64) int {
	for i, alt := range v.alternatives {
		if alt.VendorItemID == vendorItemID {
			return i
		}
	}
	return -1
}

func (v *VendorSelection) validate() error {
	if v.houseOrderItemID == 0 {
		return NewValidationError("house_order_item_id", "is required")
	}
	if v.vendorItemID == 0 {
		return NewValidationError("vendor_item_id", "is required")
	}
	if v.selectionReason.Strategy == "" {
		return NewValidationError("selection_reason.strategy", "is required")
	}
	score := v.selectionReason.ConfidenceScore
	if score < 0 || score > 1 || math.IsNaN(score) {
		return NewValidationError("selection_reason.confidence_score", "must be between 0 and 1")
	}
	if err := requireNonNegative("cost_savings", v.costSavings); err != nil {
		return err
	}

	seen := make(map[int64]struct{}, len(v.alternatives))
	for _, alt := range v.alternatives {
		if _, dup := seen[alt.VendorItemID]; dup {
			return NewValidationError("alternatives", fmt.Sprintf("duplicate vendor_item_id %d", alt.VendorItemID))
		}
		seen[alt.VendorItemID] = struct{}{}
	}
	return nil
}

func copyAlternatives(in []Alternative) []Alternative {
	out := make([]Alternative, len(in))
	copy(out, in)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
