// internal/models/audit_log.go
package models

import "time"

// AuditLog records one mutating API request.
type AuditLog struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RequestID    string    `json:"request_id" gorm:"size:36;index"`
	UserID       string    `json:"user_id" gorm:"size:255;index"`
	Action       string    `json:"action" gorm:"size:255;not null;index"`
	ResourceType string    `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *int64    `json:"resource_id" gorm:"index"`
	NewValues    JSON      `json:"new_values" gorm:"type:text"`
	StatusCode   int       `json:"status_code"`
	DurationMs   int64     `json:"duration_ms"`
	IPAddress    string    `json:"ip_address" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
