// internal/repository/store.go
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/larderline/larder-backend/internal/config"
	"github.com/larderline/larder-backend/internal/database"
	"github.com/larderline/larder-backend/internal/domain"
)

// Store bundles the repositories for one storage driver. DB and Audit are nil for the memory driver.
type Store struct {
	Products   domain.ProductRepository
	Selections domain.VendorSelectionRepository
	Audit      *AuditRepository
	DB         *gorm.DB
}

// Open builds the repositories for cfg.Driver. The memory driver always starts with the demo data;
// sql drivers migrate and seed according to cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	if cfg.Driver == "memory" {
		store := &Store{
			Products:   NewMemoryProductRepository(),
			Selections: NewMemoryVendorSelectionRepository(),
		}
		if err := database.SeedInitialData(ctx, store.Products, store.Selections); err != nil {
			return nil, err
		}
		return store, nil
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		return nil, err
	}

	store := &Store{
		Products:   NewProductRepository(db),
		Selections: NewVendorSelectionRepository(db),
		Audit:      NewAuditRepository(db),
		DB:         db,
	}

	if cfg.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	if cfg.Seed {
		if err := database.SeedInitialData(ctx, store.Products, store.Selections); err != nil {
			store.Close()
			return nil, err
		}
	}

	return store, nil
}

func (s *Store) Close() {
	if s.DB != nil {
		database.Close(s.DB)
	}
}
