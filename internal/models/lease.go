package models

import "time"

// Lease is the tenant-unit contract. Status moves only through the
// lifecycle controller or administrative update paths; every mutation
// appends a LeaseHistory row.
type Lease struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID uint `gorm:"not null;index" json:"tenant_id"`
	UnitID   uint `gorm:"not null;index" json:"unit_id"`

	Status LeaseStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`

	StartDate time.Time  `gorm:"type:datetime;not null" json:"start_date"`
	EndDate   time.Time  `gorm:"type:datetime;not null" json:"end_date"`
	MoveInAt  *time.Time `gorm:"type:datetime" json:"move_in_at,omitempty"`
	MoveOutAt *time.Time `gorm:"type:datetime" json:"move_out_at,omitempty"`

	RentAmount       float64 `gorm:"type:decimal(10,2);not null" json:"rent_amount"`
	DepositAmount    float64 `gorm:"type:decimal(10,2)" json:"deposit_amount"`
	Balance          float64 `gorm:"type:decimal(10,2);default:0" json:"balance"`
	NoticePeriodDays int     `gorm:"default:30" json:"notice_period_days"`

	AutoRenew         bool `gorm:"default:false" json:"auto_renew"`
	AutoRenewLeadDays int  `gorm:"default:60" json:"auto_renew_lead_days"`

	RenewalOfferedAt  *time.Time `gorm:"type:datetime" json:"renewal_offered_at,omitempty"`
	RenewalDueAt      *time.Time `gorm:"type:datetime" json:"renewal_due_at,omitempty"`
	RenewalAcceptedAt *time.Time `gorm:"type:datetime" json:"renewal_accepted_at,omitempty"`

	TerminationRequestedBy string     `gorm:"type:varchar(20)" json:"termination_requested_by,omitempty"`
	TerminationReason      string     `gorm:"type:text" json:"termination_reason,omitempty"`
	TerminationEffectiveAt *time.Time `gorm:"type:datetime" json:"termination_effective_at,omitempty"`

	EscalationPercent     float64    `gorm:"type:decimal(5,2)" json:"escalation_percent"`
	EscalationEffectiveAt *time.Time `gorm:"type:datetime" json:"escalation_effective_at,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// LeaseStatus is the lease lifecycle state.
type LeaseStatus string

const (
	LeaseStatusDraft           LeaseStatus = "draft"
	LeaseStatusPendingApproval LeaseStatus = "pending_approval"
	LeaseStatusActive          LeaseStatus = "active"
	LeaseStatusRenewalPending  LeaseStatus = "renewal_pending"
	LeaseStatusNoticeGiven     LeaseStatus = "notice_given"
	LeaseStatusTerminating     LeaseStatus = "terminating"
	LeaseStatusTerminated      LeaseStatus = "terminated"
	LeaseStatusHoldover        LeaseStatus = "holdover"
	LeaseStatusClosed          LeaseStatus = "closed"
)

// Actor roles recorded on lease mutations.
const (
	ActorRoleTenant  = "tenant"
	ActorRoleManager = "manager"
	ActorRoleSystem  = "system"
)

func (Lease) TableName() string {
	return "leases"
}

// Occupied reports whether the lease currently ties up its unit and tenant.
func (l *Lease) Occupied() bool {
	switch l.Status {
	case LeaseStatusTerminated, LeaseStatusClosed:
		return false
	}
	return true
}

// IsTerminal reports whether the lease is in a final state.
func (l *Lease) IsTerminal() bool {
	return l.Status == LeaseStatusTerminated || l.Status == LeaseStatusClosed
}

// EscalatedRent returns the rent with the escalation percent applied.
func (l *Lease) EscalatedRent() float64 {
	if l.EscalationPercent <= 0 {
		return l.RentAmount
	}
	return l.RentAmount * (1 + l.EscalationPercent/100)
}
