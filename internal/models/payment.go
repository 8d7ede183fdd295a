package models

import "time"

// Payment records a settled charge against an invoice.
type Payment struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID uint `gorm:"not null;index" json:"invoice_id"`
	LeaseID   uint `gorm:"not null;index" json:"lease_id"`
	UserID    uint `json:"user_id"`

	Amount          float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethodID uint    `json:"payment_method_id"`

	InitiatedBy string `gorm:"type:varchar(10);not null" json:"initiated_by"`

	// Reference is an opaque transaction identifier handed to the gateway.
	Reference string `gorm:"type:varchar(36);not null" json:"reference"`

	// AutopayInvoiceID is set only for autopay payments. Its unique index is
	// the duplicate-charge guard: a retried autopay charge for the same
	// invoice fails the insert instead of charging twice. A nullable unique
	// column is used because MySQL has no partial indexes.
	AutopayInvoiceID *uint `gorm:"uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// Payment initiators.
const (
	PaymentInitiatedByAutopay = "autopay"
	PaymentInitiatedByManual  = "manual"
)

func (Payment) TableName() string {
	return "payments"
}
