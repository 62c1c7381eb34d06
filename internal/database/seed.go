// internal/database/seed.go
package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/larderline/larder-backend/internal/domain"
)

// SeedInitialData loads demo house items and vendor selections into empty repositories.
// It is shared by the gorm and in-memory drivers.
func SeedInitialData(ctx context.Context, products domain.ProductRepository, selections domain.VendorSelectionRepository) error {
	logrus.Info("Seeding initial data")

	existing, err := products.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to check house items: %w", err)
	}
	if len(existing) == 0 {
		for _, params := range seedProducts() {
			p, err := domain.NewProduct(params)
			if err != nil {
				return fmt.Errorf("invalid seed house item %q: %w", params.Name, err)
			}
			if _, err := products.Save(ctx, p); err != nil {
				return fmt.Errorf("failed to seed house item %q: %w", params.Name, err)
			}
		}
		logrus.WithField("count", len(seedProducts())).Info("Seeded house items")
	}

	existingSelections, err := selections.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to check vendor selections: %w", err)
	}
	if len(existingSelections) == 0 {
		for _, params := range seedSelections() {
			v, err := domain.NewVendorSelection(params)
			if err != nil {
				return fmt.Errorf("invalid seed vendor selection for item %d: %w", params.HouseOrderItemID, err)
			}
			if _, err := selections.Save(ctx, v); err != nil {
				return fmt.Errorf("failed to seed vendor selection for item %d: %w", params.HouseOrderItemID, err)
			}
		}
		logrus.WithField("count", len(seedSelections())).Info("Seeded vendor selections")
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

func seedProducts() []domain.ProductParams {
	return []domain.ProductParams{
		{Name: "Roma Tomatoes", Price: 1.45, Active: true, StorageLocation: "Walk-in Cooler", InventoryCategory: "Produce", TrackingUnit: domain.UnitPound, ParLevel: 40, CurrentCount: 12},
		{Name: "Yellow Onions", Price: 0.89, Active: true, StorageLocation: "Dry Storage", InventoryCategory: "Produce", TrackingUnit: domain.UnitPound, ParLevel: 50, CurrentCount: 55},
		{Name: "Whole Milk", Price: 4.29, Active: true, StorageLocation: "Walk-in Cooler", InventoryCategory: "Dairy", TrackingUnit: domain.UnitGallon, ParLevel: 12, CurrentCount: 0},
		{Name: "Large Eggs", Price: 3.6, Active: true, StorageLocation: "Walk-in Cooler", InventoryCategory: "Dairy", TrackingUnit: domain.UnitDozen, ParLevel: 20, CurrentCount: 16},
		{Name: "All-Purpose Flour", Price: 18.5, Active: true, StorageLocation: "Dry Storage", InventoryCategory: "Baking", TrackingUnit: domain.UnitBag, ParLevel: 6, CurrentCount: 14},
		{Name: "Extra Virgin Olive Oil", Price: 22, Active: true, StorageLocation: "Dry Storage", InventoryCategory: "Pantry", TrackingUnit: domain.UnitBottle, ParLevel: 8, CurrentCount: 8},
		{Name: "Chicken Thighs", Price: 2.99, Active: true, StorageLocation: "Walk-in Freezer", InventoryCategory: "Protein", TrackingUnit: domain.UnitPound, ParLevel: 60, CurrentCount: 45},
		{Name: "Paper Napkins", Price: 31, Active: false, StorageLocation: "Back Hall", InventoryCategory: "Disposables", TrackingUnit: domain.UnitCase, ParLevel: 4, CurrentCount: 1},
	}
}

func seedSelections() []domain.VendorSelectionParams {
	valley := domain.Vendor{ID: 1, Name: "Valley Produce"}
	coastal := domain.Vendor{ID: 2, Name: "Coastal Foods"}
	metro := domain.Vendor{ID: 3, Name: "Metro Restaurant Supply"}

	return []domain.VendorSelectionParams{
		{
			HouseOrderID:     1001,
			HouseOrderItemID: 1,
			VendorItemID:     101,
			SelectionReason: domain.SelectionReason{
				Strategy:        domain.StrategyLowestPrice,
				Reason:          "Lowest case price across three vendors",
				ConfidenceScore: 0.91,
			},
			CostSavings: 64.25,
			Alternatives: []domain.Alternative{
				{VendorItemID: 102, CostDifference: 4.1, VendorItem: domain.VendorItem{ID: 102, ProductName: "Roma Tomatoes 25lb", PricePerCase: 38.5, Vendor: coastal}},
				{VendorItemID: 103, CostDifference: 6.75, VendorItem: domain.VendorItem{ID: 103, ProductName: "Tomatoes Roma 25lb", PricePerCase: 41.15, Vendor: metro}},
			},
		},
		{
			HouseOrderID:     1001,
			HouseOrderItemID: 2,
			VendorItemID:     201,
			SelectionReason: domain.SelectionReason{
				Strategy:        domain.StrategyBestValue,
				Reason:          "Best price per gallon for the pack size",
				ConfidenceScore: 0.68,
			},
			CostSavings: 12.4,
			Alternatives: []domain.Alternative{
				{VendorItemID: 202, CostDifference: 1.2, VendorItem: domain.VendorItem{ID: 202, ProductName: "Whole Milk 4x1gal", PricePerCase: 18.36, Vendor: valley}},
			},
		},
		{
			HouseOrderID:     1002,
			HouseOrderItemID: 3,
			VendorItemID:     301,
			SelectionReason: domain.SelectionReason{
				Strategy:        domain.StrategyPreferredVendor,
				Reason:          "Contracted protein vendor",
				ConfidenceScore: 0.42,
			},
			CostSavings: 0,
		},
	}
}
