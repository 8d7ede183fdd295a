package billing

import (
	"errors"
	"fmt"
	"time"

	"rental-portal/internal/apperr"
	"rental-portal/internal/audit"
	"rental-portal/internal/clock"
	"rental-portal/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ScheduleService owns the one-schedule-per-lease recurring billing model.
// The unique index on lease_id is the upsert key.
type ScheduleService struct {
	db   *gorm.DB
	sink audit.Sink
	log  *logrus.Logger
}

// NewScheduleService creates a schedule manager.
func NewScheduleService(db *gorm.DB, sink audit.Sink, log *logrus.Logger) *ScheduleService {
	return &ScheduleService{db: db, sink: sink, log: log}
}

// ScheduleParams carries schedule terms for an upsert.
type ScheduleParams struct {
	Amount           float64
	Description      string
	Frequency        models.ScheduleFrequency
	DayOfMonth       *int
	DayOfWeek        *int
	LateFeeAmount    *float64
	LateFeeAfterDays *int
	NextRun          *time.Time
}

// UpsertSchedule creates or replaces the lease's schedule. When no billing
// day is given, monthly schedules default to the lease start day and weekly
// schedules to today's weekday. NextRun is computed via the clock unless
// the caller supplies one.
func (s *ScheduleService) UpsertSchedule(lease *models.Lease, p ScheduleParams) (*models.RecurringInvoiceSchedule, error) {
	if p.Amount <= 0 {
		return nil, apperr.Validation("schedule amount must be positive")
	}

	sched := models.RecurringInvoiceSchedule{
		LeaseID:          lease.ID,
		Amount:           p.Amount,
		Description:      p.Description,
		Frequency:        p.Frequency,
		LateFeeAmount:    p.LateFeeAmount,
		LateFeeAfterDays: p.LateFeeAfterDays,
		Active:           true,
	}
	if sched.Description == "" {
		sched.Description = fmt.Sprintf("Rent for lease %d", lease.ID)
	}

	now := time.Now()
	switch p.Frequency {
	case models.FrequencyMonthly:
		if p.DayOfMonth != nil {
			// 1-28 so every month has the day; the clock clips defaults above 28
			if *p.DayOfMonth < 1 || *p.DayOfMonth > 28 {
				return nil, apperr.Validation("day_of_month must be between 1 and 28")
			}
			sched.DayOfMonth = *p.DayOfMonth
		} else {
			// stored day stays within 1-28 even for leases starting on the 29th-31st
			sched.DayOfMonth = lease.StartDate.Day()
			if sched.DayOfMonth > 28 {
				sched.DayOfMonth = 28
			}
		}
		sched.NextRun = clock.NextMonthlyOccurrence(now, sched.DayOfMonth)
	case models.FrequencyWeekly:
		if p.DayOfWeek != nil {
			if *p.DayOfWeek < 0 || *p.DayOfWeek > 6 {
				return nil, apperr.Validation("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
			}
			sched.DayOfWeek = *p.DayOfWeek
		} else {
			sched.DayOfWeek = int(now.Weekday())
		}
		sched.NextRun = clock.NextWeeklyOccurrence(now, sched.DayOfWeek)
	default:
		return nil, apperr.Validation("frequency must be %q or %q", models.FrequencyMonthly, models.FrequencyWeekly)
	}
	if p.NextRun != nil {
		sched.NextRun = *p.NextRun
	}

	// Upsert keyed on lease_id
	var existing models.RecurringInvoiceSchedule
	result := s.db.Where("lease_id = ?", lease.ID).First(&existing)
	if result.Error == nil {
		sched.ID = existing.ID
		sched.CreatedAt = existing.CreatedAt
		if err := s.db.Save(&sched).Error; err != nil {
			return nil, err
		}
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := s.db.Create(&sched).Error; err != nil {
			return nil, err
		}
	} else {
		return nil, result.Error
	}

	s.sink.Emit(audit.EventScheduleUpserted, map[string]interface{}{
		"lease_id":    lease.ID,
		"schedule_id": sched.ID,
		"amount":      sched.Amount,
		"frequency":   string(sched.Frequency),
		"next_run":    sched.NextRun,
	})
	s.log.Infof("Schedule %d upserted for lease %d: %.2f %s, next run %s",
		sched.ID, lease.ID, sched.Amount, sched.Frequency, sched.NextRun.Format("2006-01-02"))
	return &sched, nil
}

// DeactivateSchedule switches the lease's schedule off. Idempotent; the
// audit event fires only when a schedule actually existed.
func (s *ScheduleService) DeactivateSchedule(leaseID uint) error {
	var sched models.RecurringInvoiceSchedule
	err := s.db.Where("lease_id = ?", leaseID).First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if sched.Active {
		if err := s.db.Model(&sched).Update("active", false).Error; err != nil {
			return err
		}
	}

	s.sink.Emit(audit.EventScheduleDeactivated, map[string]interface{}{
		"lease_id":    leaseID,
		"schedule_id": sched.ID,
	})
	return nil
}

// GenerateDueInvoices creates one invoice for every active schedule whose
// next run has arrived, then advances the schedule exactly one period from
// the run that triggered generation (never from asOf), so a late cycle
// still bills each period separately. One schedule's failure does not stop
// the rest.
func (s *ScheduleService) GenerateDueInvoices(asOf time.Time) (created int, failed int) {
	var due []models.RecurringInvoiceSchedule
	if err := s.db.Where("active = ? AND next_run <= ?", true, asOf).Find(&due).Error; err != nil {
		s.log.Errorf("Billing: listing due schedules: %v", err)
		return 0, 1
	}

	for i := range due {
		sched := due[i]
		if err := s.generateForSchedule(&sched); err != nil {
			s.log.Errorf("Billing: schedule %d (lease %d): %v", sched.ID, sched.LeaseID, err)
			failed++
			continue
		}
		created++
	}

	if created > 0 || failed > 0 {
		s.log.Infof("Billing: generated %d invoices (%d failures)", created, failed)
	}
	return created, failed
}

func (s *ScheduleService) generateForSchedule(sched *models.RecurringInvoiceSchedule) error {
	var lease models.Lease
	if err := s.db.First(&lease, sched.LeaseID).Error; err != nil {
		return fmt.Errorf("loading lease %d: %w", sched.LeaseID, err)
	}

	prevRun := sched.NextRun
	var nextRun time.Time
	switch sched.Frequency {
	case models.FrequencyMonthly:
		nextRun = clock.NextMonthlyOccurrence(prevRun, sched.DayOfMonth)
	case models.FrequencyWeekly:
		nextRun = clock.NextWeeklyOccurrence(prevRun, sched.DayOfWeek)
	default:
		return fmt.Errorf("unknown frequency %q", sched.Frequency)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		invoice := models.Invoice{
			LeaseID:     sched.LeaseID,
			ScheduleID:  &sched.ID,
			Description: sched.Description,
			Amount:      sched.Amount,
			DueDate:     prevRun,
			Status:      models.InvoiceStatusUnpaid,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Lease{}).Where("id = ?", lease.ID).
			Update("balance", gorm.Expr("balance + ?", sched.Amount)).Error; err != nil {
			return err
		}

		sched.NextRun = nextRun
		return tx.Save(sched).Error
	})
}
