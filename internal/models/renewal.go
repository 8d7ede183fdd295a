package models

import "time"

// LeaseRenewalOffer is a proposed new term for an existing lease. Created
// by a manager; resolved by the lease's tenant.
type LeaseRenewalOffer struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID uint `gorm:"not null;index" json:"lease_id"`

	ProposedRent      float64   `gorm:"type:decimal(10,2);not null" json:"proposed_rent"`
	ProposedStart     time.Time `gorm:"type:datetime;not null" json:"proposed_start"`
	ProposedEnd       time.Time `gorm:"type:datetime;not null" json:"proposed_end"`
	EscalationPercent float64   `gorm:"type:decimal(5,2)" json:"escalation_percent"`
	Message           string    `gorm:"type:text" json:"message,omitempty"`

	Status    RenewalOfferStatus `gorm:"type:varchar(10);not null;default:'offered';index" json:"status"`
	ExpiresAt *time.Time         `gorm:"type:datetime" json:"expires_at,omitempty"`

	CreatedBy   uint       `json:"created_by"`
	ResponderID *uint      `json:"responder_id,omitempty"`
	RespondedAt *time.Time `gorm:"type:datetime" json:"responded_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// RenewalOfferStatus is the resolution state of an offer.
type RenewalOfferStatus string

const (
	RenewalOfferStatusOffered  RenewalOfferStatus = "offered"
	RenewalOfferStatusAccepted RenewalOfferStatus = "accepted"
	RenewalOfferStatusDeclined RenewalOfferStatus = "declined"
)

func (LeaseRenewalOffer) TableName() string {
	return "lease_renewal_offers"
}

// Expired reports whether the offer can no longer be accepted at ref time.
func (o *LeaseRenewalOffer) Expired(ref time.Time) bool {
	return o.ExpiresAt != nil && o.ExpiresAt.Before(ref)
}
