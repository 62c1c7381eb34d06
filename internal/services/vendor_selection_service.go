// internal/services/vendor_selection_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/larderline/larder-backend/internal/domain"
	"github.com/larderline/larder-backend/internal/metrics"
	"github.com/larderline/larder-backend/internal/utils"
)

const (
	minimumValidConfidence = 0.5
	highSavingsThreshold   = 50.0
)

type VendorSelectionService struct {
	selections domain.VendorSelectionRepository
	metrics    *metrics.Metrics
}

type OverrideSelectionRequest struct {
	ItemID       int64  `json:"-"`
	VendorItemID int64  `json:"vendor_item_id" validate:"gt=0"`
	OverriddenBy string `json:"overridden_by" validate:"notblank,max=100"`
}

// SelectionFilter narrows ListSelections. Zero values mean no constraint.
type SelectionFilter struct {
	Strategy   domain.SelectionStrategy `json:"strategy" validate:"omitempty,strategy"`
	Overridden *bool                    `json:"overridden"`
}

type StrategyCount struct {
	Strategy domain.SelectionStrategy `json:"strategy"`
	Count    int                      `json:"count"`
}

// StrategyDistribution remembers the order in which strategies were first seen.
type StrategyDistribution struct {
	counts map[domain.SelectionStrategy]int
	order  []domain.SelectionStrategy
}

func newStrategyDistribution() *StrategyDistribution {
	return &StrategyDistribution{counts: make(map[domain.SelectionStrategy]int)}
}

func (d *StrategyDistribution) add(strategy domain.SelectionStrategy) {
	if _, seen := d.counts[strategy]; !seen {
		d.order = append(d.order, strategy)
	}
	d.counts[strategy]++
}

func (d *StrategyDistribution) Count(strategy domain.SelectionStrategy) int {
	return d.counts[strategy]
}

func (d *StrategyDistribution) Len() int {
	return len(d.order)
}

// Entries lists the histogram in first-seen order.
func (d *StrategyDistribution) Entries() []StrategyCount {
	entries := make([]StrategyCount, 0, len(d.order))
	for _, strategy := range d.order {
		entries = append(entries, StrategyCount{Strategy: strategy, Count: d.counts[strategy]})
	}
	return entries
}

// Best returns the most used strategy. The first one seen wins ties.
func (d *StrategyDistribution) Best() domain.SelectionStrategy {
	var best domain.SelectionStrategy
	bestCount := 0
	for _, strategy := range d.order {
		if d.counts[strategy] > bestCount {
			best = strategy
			bestCount = d.counts[strategy]
		}
	}
	return best
}

func (d *StrategyDistribution) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, entry := range d.Entries() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%d", string(entry.Strategy), entry.Count)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

type ConfidenceDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type VendorSelectionAnalysis struct {
	TotalSelections        int                    `json:"total_selections"`
	OverriddenSelections   int                    `json:"overridden_selections"`
	AverageConfidence      float64                `json:"average_confidence"`
	TotalCostSavings       decimal.Decimal        `json:"total_cost_savings"`
	StrategyDistribution   *StrategyDistribution  `json:"strategy_distribution"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
}

type SelectionRecommendations struct {
	LowConfidence []*domain.VendorSelection `json:"low_confidence_selections"`
	HighSavings   []*domain.VendorSelection `json:"high_savings_selections"`
	Overridden    []*domain.VendorSelection `json:"overridden_selections"`
}

type SelectionValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

type OrderSelectionStats struct {
	TotalItems                 int             `json:"total_items"`
	SelectionsWithAlternatives int             `json:"selections_with_alternatives"`
	OverriddenSelections       int             `json:"overridden_selections"`
	TotalSavings               decimal.Decimal `json:"total_savings"`
	AverageConfidence          float64         `json:"average_confidence"`
}

func NewVendorSelectionService(selections domain.VendorSelectionRepository, m *metrics.Metrics) *VendorSelectionService {
	return &VendorSelectionService{
		selections: selections,
		metrics:    m,
	}
}

func (s *VendorSelectionService) GetAllSelections(ctx context.Context) ([]*domain.VendorSelection, error) {
	selections, err := s.selections.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor selections: %w", err)
	}
	return selections, nil
}

func (s *VendorSelectionService) ListSelections(ctx context.Context, filter SelectionFilter) ([]*domain.VendorSelection, error) {
	if err := utils.ValidateCommand(&filter); err != nil {
		return nil, err
	}

	var (
		selections []*domain.VendorSelection
		err        error
	)
	switch {
	case filter.Strategy != "":
		selections, err = s.GetSelectionsByStrategy(ctx, filter.Strategy)
	case filter.Overridden != nil && *filter.Overridden:
		selections, err = s.GetOverriddenSelections(ctx)
	default:
		selections, err = s.GetAllSelections(ctx)
	}
	if err != nil {
		return nil, err
	}
	if filter.Overridden == nil {
		return selections, nil
	}

	matches := make([]*domain.VendorSelection, 0, len(selections))
	for _, selection := range selections {
		if selection.IsOverridden() == *filter.Overridden {
			matches = append(matches, selection)
		}
	}
	return matches, nil
}

func (s *VendorSelectionService) GetVendorSelectionsForOrder(ctx context.Context, orderID int64) ([]*domain.VendorSelection, error) {
	selections, err := s.selections.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor selections of order %d: %w", orderID, err)
	}
	return selections, nil
}

// GetVendorSelectionForItem returns nil without error when the item has no selection.
func (s *VendorSelectionService) GetVendorSelectionForItem(ctx context.Context, itemID int64) (*domain.VendorSelection, error) {
	selection, err := s.selections.FindByHouseOrderItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor selection of item %d: %w", itemID, err)
	}
	return selection, nil
}

func (s *VendorSelectionService) GetOverriddenSelections(ctx context.Context) ([]*domain.VendorSelection, error) {
	selections, err := s.selections.FindOverriddenSelections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overridden vendor selections: %w", err)
	}
	return selections, nil
}

func (s *VendorSelectionService) GetSelectionsByStrategy(ctx context.Context, strategy domain.SelectionStrategy) ([]*domain.VendorSelection, error) {
	selections, err := s.selections.FindSelectionsByStrategy(ctx, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor selections by strategy %s: %w", strategy, err)
	}
	return selections, nil
}

// OverrideSelection swaps the chosen vendor item for one of the recorded alternatives.
func (s *VendorSelectionService) OverrideSelection(ctx context.Context, req *OverrideSelectionRequest) (selection *domain.VendorSelection, err error) {
	defer func() { s.metrics.SelectionChanged("override", err) }()

	if err := utils.ValidateCommand(req); err != nil {
		return nil, err
	}

	if _, err := s.requireSelection(ctx, req.ItemID); err != nil {
		return nil, err
	}

	updated, err := s.selections.OverrideSelection(ctx, req.ItemID, req.VendorItemID, strings.TrimSpace(req.OverriddenBy))
	if err != nil {
		return nil, fmt.Errorf("failed to override vendor selection of item %d: %w", req.ItemID, err)
	}

	logrus.WithFields(logrus.Fields{
		"house_order_item_id": req.ItemID,
		"vendor_item_id":      updated.VendorItemID(),
		"overridden_by":       updated.OverriddenBy(),
	}).Info("Vendor selection overridden")
	return updated, nil
}

func (s *VendorSelectionService) ResetOverride(ctx context.Context, itemID int64) (selection *domain.VendorSelection, err error) {
	defer func() { s.metrics.SelectionChanged("reset", err) }()

	current, err := s.requireSelection(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !current.IsOverridden() {
		return nil, domain.NewDomainError("selection is not overridden")
	}

	updated, err := s.selections.ResetOverride(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset vendor selection of item %d: %w", itemID, err)
	}

	logrus.WithField("house_order_item_id", itemID).Info("Vendor selection override reset")
	return updated, nil
}

func (s *VendorSelectionService) GetVendorSelectionAnalysis(ctx context.Context) (*VendorSelectionAnalysis, error) {
	selections, err := s.GetAllSelections(ctx)
	if err != nil {
		return nil, err
	}
	return analyzeSelections(selections), nil
}

func analyzeSelections(selections []*domain.VendorSelection) *VendorSelectionAnalysis {
	analysis := &VendorSelectionAnalysis{
		TotalCostSavings:     decimal.Zero,
		StrategyDistribution: newStrategyDistribution(),
	}
	if len(selections) == 0 {
		return analysis
	}

	confidenceSum := 0.0
	for _, selection := range selections {
		analysis.TotalSelections++
		if selection.IsOverridden() {
			analysis.OverriddenSelections++
		}
		confidenceSum += selection.ConfidenceScore()
		analysis.TotalCostSavings = analysis.TotalCostSavings.Add(decimal.NewFromFloat(selection.CostSavings()))
		analysis.StrategyDistribution.add(selection.Strategy())

		switch selection.ConfidenceLevel() {
		case domain.ConfidenceHigh:
			analysis.ConfidenceDistribution.High++
		case domain.ConfidenceMedium:
			analysis.ConfidenceDistribution.Medium++
		default:
			analysis.ConfidenceDistribution.Low++
		}
	}
	analysis.AverageConfidence = confidenceSum / float64(len(selections))
	return analysis
}

// GetBestPerformingStrategy returns "" when there are no selections.
func (s *VendorSelectionService) GetBestPerformingStrategy(ctx context.Context) (domain.SelectionStrategy, error) {
	analysis, err := s.GetVendorSelectionAnalysis(ctx)
	if err != nil {
		return "", err
	}
	return analysis.StrategyDistribution.Best(), nil
}

func (s *VendorSelectionService) GetSelectionRecommendations(ctx context.Context) (*SelectionRecommendations, error) {
	selections, err := s.GetAllSelections(ctx)
	if err != nil {
		return nil, err
	}

	recs := &SelectionRecommendations{
		LowConfidence: []*domain.VendorSelection{},
		HighSavings:   []*domain.VendorSelection{},
		Overridden:    []*domain.VendorSelection{},
	}
	for _, selection := range selections {
		if selection.ConfidenceLevel() == domain.ConfidenceLow {
			recs.LowConfidence = append(recs.LowConfidence, selection)
		}
		if selection.CostSavings() > highSavingsThreshold {
			recs.HighSavings = append(recs.HighSavings, selection)
		}
		if selection.IsOverridden() {
			recs.Overridden = append(recs.Overridden, selection)
		}
	}

	sort.SliceStable(recs.HighSavings, func(i, j int) bool {
		return recs.HighSavings[i].CostSavings() > recs.HighSavings[j].CostSavings()
	})
	return recs, nil
}

// ValidateSelection reports every quality problem of a selection rather than the first one.
func (s *VendorSelectionService) ValidateSelection(selection *domain.VendorSelection) *SelectionValidation {
	var err error
	if selection.ConfidenceScore() < minimumValidConfidence {
		err = multierr.Append(err, errors.New("Confidence score is too low"))
	}
	if selection.CostSavings() < 0 {
		err = multierr.Append(err, errors.New("Cost savings cannot be negative"))
	}
	if !selection.HasAlternatives() {
		err = multierr.Append(err, errors.New("No alternatives available"))
	}

	problems := multierr.Errors(err)
	result := &SelectionValidation{IsValid: len(problems) == 0, Errors: make([]string, 0, len(problems))}
	for _, problem := range problems {
		result.Errors = append(result.Errors, problem.Error())
	}
	return result
}

func (s *VendorSelectionService) GetOrderSelectionStats(ctx context.Context, orderID int64) (*OrderSelectionStats, error) {
	selections, err := s.GetVendorSelectionsForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	stats := &OrderSelectionStats{TotalSavings: decimal.Zero}
	confidenceSum := 0.0
	for _, selection := range selections {
		stats.TotalItems++
		if selection.HasAlternatives() {
			stats.SelectionsWithAlternatives++
		}
		if selection.IsOverridden() {
			stats.OverriddenSelections++
		}
		stats.TotalSavings = stats.TotalSavings.Add(decimal.NewFromFloat(selection.CostSavings()))
		confidenceSum += selection.ConfidenceScore()
	}
	if stats.TotalItems > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.TotalItems)
	}
	return stats, nil
}

func (s *VendorSelectionService) requireSelection(ctx context.Context, itemID int64) (*domain.VendorSelection, error) {
	selection, err := s.selections.FindByHouseOrderItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor selection of item %d: %w", itemID, err)
	}
	if selection == nil {
		return nil, domain.NewNotFoundError("vendor selection for item", itemID)
	}
	return selection, nil
}
