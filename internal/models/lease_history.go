package models

import "time"

// LeaseHistory is the append-only audit trail for a lease. Rows are never
// updated or deleted; ordering is by creation time.
type LeaseHistory struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID uint `gorm:"not null;index:idx_lease_created" json:"lease_id"`

	FromStatus LeaseStatus `gorm:"type:varchar(20)" json:"from_status,omitempty"`
	ToStatus   LeaseStatus `gorm:"type:varchar(20)" json:"to_status,omitempty"`

	ActorID   uint   `json:"actor_id,omitempty"`
	ActorRole string `gorm:"type:varchar(20)" json:"actor_role,omitempty"`
	Note      string `gorm:"type:text" json:"note,omitempty"`

	// Monetary snapshot at the time of the change
	RentAmount float64 `gorm:"type:decimal(10,2)" json:"rent_amount"`
	Balance    float64 `gorm:"type:decimal(10,2)" json:"balance"`

	// Free-form metadata, JSON-encoded
	Metadata string `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_lease_created,priority:2" json:"created_at"`
}

func (LeaseHistory) TableName() string {
	return "lease_history"
}
