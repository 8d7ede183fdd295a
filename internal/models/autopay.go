package models

import "time"

// AutopayEnrollment opts a lease into automatic charging of due invoices.
// One enrollment per lease; the payment method must belong to the lease's
// tenant (checked at configuration time).
type AutopayEnrollment struct {
	ID              uint `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID         uint `gorm:"not null;uniqueIndex" json:"lease_id"`
	PaymentMethodID uint `gorm:"not null" json:"payment_method_id"`

	Active bool `gorm:"not null;default:true;index" json:"active"`

	// MaxAmount caps a single automatic charge; invoices above it are skipped.
	MaxAmount *float64 `gorm:"type:decimal(10,2)" json:"max_amount,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

func (AutopayEnrollment) TableName() string {
	return "autopay_enrollments"
}

// PaymentMethod is a stored payment instrument owned by a tenant. Gateway
// details live with the payment provider; only the reference is kept here.
type PaymentMethod struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID uint   `gorm:"not null;index" json:"tenant_id"`
	Label    string `gorm:"type:varchar(100)" json:"label"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
