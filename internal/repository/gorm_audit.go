// internal/repository/gorm_audit.go
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/larderline/larder-backend/internal/models"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// Recent returns the newest audit entries first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	return entries, nil
}
