package models

import "time"

// RecurringInvoiceSchedule drives automatic invoice generation for one
// lease. The unique index on lease_id is the upsert key: a lease has
// exactly one schedule row.
type RecurringInvoiceSchedule struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	LeaseID uint `gorm:"not null;uniqueIndex" json:"lease_id"`

	Amount      float64           `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description string            `gorm:"type:varchar(255)" json:"description"`
	Frequency   ScheduleFrequency `gorm:"type:varchar(10);not null" json:"frequency"`

	// DayOfMonth 1-28 (monthly), DayOfWeek 0=Sunday..6=Saturday (weekly)
	DayOfMonth int `json:"day_of_month,omitempty"`
	DayOfWeek  int `json:"day_of_week,omitempty"`

	NextRun time.Time `gorm:"type:datetime;not null;index" json:"next_run"`

	LateFeeAmount    *float64 `gorm:"type:decimal(10,2)" json:"late_fee_amount,omitempty"`
	LateFeeAfterDays *int     `json:"late_fee_after_days,omitempty"`

	Active bool `gorm:"not null;default:true;index" json:"active"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// ScheduleFrequency is the billing recurrence interval.
type ScheduleFrequency string

const (
	FrequencyMonthly ScheduleFrequency = "monthly"
	FrequencyWeekly  ScheduleFrequency = "weekly"
)

func (RecurringInvoiceSchedule) TableName() string {
	return "recurring_invoice_schedules"
}

// AssessesLateFees reports whether the schedule defines both a fee amount
// and a grace period.
func (s *RecurringInvoiceSchedule) AssessesLateFees() bool {
	return s.LateFeeAmount != nil && *s.LateFeeAmount > 0 && s.LateFeeAfterDays != nil
}
