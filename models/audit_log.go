package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions recorded for administrative mutations. Visit submissions are
// deliberately not audited; they are their own permanent record.
const (
	AuditUserCreated     = "USER_CREATED"
	AuditUserDeactivated = "USER_DEACTIVATED"
	AuditPasswordReset   = "PASSWORD_RESET"
)

// AuditLog is an append-only record of an administrative action. The actor
// name is a snapshot at write time, not a live reference.
type AuditLog struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Action          string            `gorm:"size:40;index;not null" json:"action"`
	PerformedBy     uuid.UUID         `gorm:"column:performed_by;type:uuid;not null" json:"performed_by"`
	PerformedByName string            `gorm:"column:performed_by_name;size:100;not null" json:"performed_by_name"`
	TargetUserID    *uuid.UUID        `gorm:"column:target_user_id;type:uuid" json:"target_user_id"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
