package models

import "time"

// Invoice is a charge against a lease, generated by a schedule or created
// manually. Invoices are never deleted; a settled invoice flips to paid.
type Invoice struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID uint `gorm:"not null;index" json:"lease_id"`

	// ScheduleID links back to the originating schedule, nil for manual invoices
	ScheduleID *uint `gorm:"index" json:"schedule_id,omitempty"`

	Description string        `gorm:"type:varchar(255)" json:"description"`
	Amount      float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	DueDate     time.Time     `gorm:"type:datetime;not null;index" json:"due_date"`
	Status      InvoiceStatus `gorm:"type:varchar(10);not null;default:'unpaid';index" json:"status"`

	PaidAt *time.Time `gorm:"type:datetime" json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// InvoiceStatus is the settlement state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

func (Invoice) TableName() string {
	return "invoices"
}

// IsUnpaid reports whether the invoice still awaits settlement.
func (i *Invoice) IsUnpaid() bool {
	return i.Status == InvoiceStatusUnpaid
}

// LateFee is a one-time penalty attached to an invoice. An invoice carries
// at most one active (non-waived) fee.
type LateFee struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID uint    `gorm:"not null;index" json:"invoice_id"`
	Amount    float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	Waived    bool    `gorm:"not null;default:false" json:"waived"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

func (LateFee) TableName() string {
	return "late_fees"
}
