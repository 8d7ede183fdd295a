package models

import "time"

// DeleteLog records leases physically purged by the retention cleanup.
type DeleteLog struct {
	ID       uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID  uint        `gorm:"not null;index" json:"lease_id"`
	TenantID uint        `json:"tenant_id"`
	UnitID   uint        `json:"unit_id"`
	Status   LeaseStatus `gorm:"type:varchar(20)" json:"status"`
	ClosedAt *time.Time  `gorm:"type:datetime" json:"closed_at,omitempty"`

	DeletedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"deleted_at"`
	Reason    string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonRetention = "retention_expired"
	DeleteReasonManual    = "manual_deletion"
)
