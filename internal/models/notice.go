package models

import "time"

// LeaseNotice is a declaration of intent on a lease. A move-out notice is
// the only type that forces a lease status transition.
type LeaseNotice struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID uint `gorm:"not null;index" json:"lease_id"`

	Type           NoticeType `gorm:"type:varchar(10);not null" json:"type"`
	DeliveryMethod string     `gorm:"type:varchar(20)" json:"delivery_method,omitempty"`
	Message        string     `gorm:"type:text" json:"message,omitempty"`

	EffectiveAt    *time.Time `gorm:"type:datetime" json:"effective_at,omitempty"`
	AcknowledgedAt *time.Time `gorm:"type:datetime" json:"acknowledged_at,omitempty"`

	CreatedBy   uint   `json:"created_by"`
	CreatorRole string `gorm:"type:varchar(20)" json:"creator_role"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// NoticeType classifies a lease notice.
type NoticeType string

const (
	NoticeTypeMoveIn  NoticeType = "move_in"
	NoticeTypeMoveOut NoticeType = "move_out"
	NoticeTypeOther   NoticeType = "other"
)

func (LeaseNotice) TableName() string {
	return "lease_notices"
}
