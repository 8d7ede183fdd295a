package lease

import (
	"time"

	"rental-portal/internal/models"

	"gorm.io/gorm"
)

// SweepResult summarizes one daily lifecycle sweep.
type SweepResult struct {
	RenewalOffers int `json:"renewal_offers"`
	Holdovers     int `json:"holdovers"`
	Terminating   int `json:"terminating"`
	Terminated    int `json:"terminated"`
	Errors        int `json:"errors"`
}

// RunDailySweep advances leases whose dates have caught up with them:
// auto-renew leases near their end get a renewal offer, expired unrenewed
// leases fall into holdover, served notices progress toward termination.
// A single lease's failure is logged and does not stop the sweep.
func (s *Service) RunDailySweep(asOf time.Time) SweepResult {
	var res SweepResult

	s.sweepAutoRenewals(asOf, &res)
	s.sweepHoldovers(asOf, &res)
	s.sweepNoticePeriods(asOf, &res)
	s.sweepTerminations(asOf, &res)

	s.log.Infof("Lifecycle sweep done: %d offers, %d holdovers, %d terminating, %d terminated, %d errors",
		res.RenewalOffers, res.Holdovers, res.Terminating, res.Terminated, res.Errors)
	return res
}

// sweepAutoRenewals offers renewal, at the escalated rent, to active
// auto-renew leases inside their lead window.
func (s *Service) sweepAutoRenewals(asOf time.Time, res *SweepResult) {
	var leases []models.Lease
	err := s.store.DB().
		Where("status = ? AND auto_renew = ? AND renewal_offered_at IS NULL", models.LeaseStatusActive, true).
		Find(&leases).Error
	if err != nil {
		s.log.Errorf("Lifecycle sweep: listing auto-renew leases: %v", err)
		res.Errors++
		return
	}

	for i := range leases {
		l := leases[i]
		lead := l.EndDate.AddDate(0, 0, -l.AutoRenewLeadDays)
		if asOf.Before(lead) || !asOf.Before(l.EndDate) {
			continue
		}

		term := l.EndDate.Sub(l.StartDate)
		_, err := s.CreateRenewalOffer(l.ID, OfferParams{
			ProposedRent:      l.EscalatedRent(),
			ProposedStart:     l.EndDate,
			ProposedEnd:       l.EndDate.Add(term),
			EscalationPercent: l.EscalationPercent,
			Message:           "Automatic renewal offer",
		}, systemActor)
		if err != nil {
			s.log.Errorf("Lifecycle sweep: auto-renew offer for lease %d: %v", l.ID, err)
			res.Errors++
			continue
		}
		res.RenewalOffers++
	}
}

// sweepHoldovers moves expired, unrenewed active leases into holdover.
func (s *Service) sweepHoldovers(asOf time.Time, res *SweepResult) {
	leases, err := s.store.ExpiredActiveLeases(asOf)
	if err != nil {
		s.log.Errorf("Lifecycle sweep: listing expired leases: %v", err)
		res.Errors++
		return
	}

	for i := range leases {
		l := leases[i]
		err := s.store.DB().Transaction(func(tx *gorm.DB) error {
			return s.transition(tx, &l, models.LeaseStatusHoldover, systemActor,
				"Lease term expired without renewal", nil)
		})
		if err != nil {
			s.log.Errorf("Lifecycle sweep: holdover for lease %d: %v", l.ID, err)
			res.Errors++
			continue
		}
		res.Holdovers++
	}
}

// sweepNoticePeriods progresses served move-out notices whose date has
// passed.
func (s *Service) sweepNoticePeriods(asOf time.Time, res *SweepResult) {
	var leases []models.Lease
	err := s.store.DB().
		Where("status = ? AND move_out_at IS NOT NULL AND move_out_at <= ?", models.LeaseStatusNoticeGiven, asOf).
		Find(&leases).Error
	if err != nil {
		s.log.Errorf("Lifecycle sweep: listing served notices: %v", err)
		res.Errors++
		return
	}

	for i := range leases {
		l := leases[i]
		if l.TerminationEffectiveAt == nil {
			l.TerminationEffectiveAt = l.MoveOutAt
		}
		err := s.store.DB().Transaction(func(tx *gorm.DB) error {
			return s.transition(tx, &l, models.LeaseStatusTerminating, systemActor,
				"Move-out date reached", nil)
		})
		if err != nil {
			s.log.Errorf("Lifecycle sweep: terminating lease %d: %v", l.ID, err)
			res.Errors++
			continue
		}
		res.Terminating++
	}
}

// sweepTerminations finalizes terminating leases past their effective date
// and shuts their billing schedule off.
func (s *Service) sweepTerminations(asOf time.Time, res *SweepResult) {
	var leases []models.Lease
	err := s.store.DB().
		Where("status = ? AND termination_effective_at IS NOT NULL AND termination_effective_at <= ?",
			models.LeaseStatusTerminating, asOf).
		Find(&leases).Error
	if err != nil {
		s.log.Errorf("Lifecycle sweep: listing terminating leases: %v", err)
		res.Errors++
		return
	}

	for i := range leases {
		l := leases[i]
		err := s.store.DB().Transaction(func(tx *gorm.DB) error {
			if err := s.transition(tx, &l, models.LeaseStatusTerminated, systemActor,
				"Termination effective", nil); err != nil {
				return err
			}
			// a terminated lease stops billing
			return tx.Model(&models.RecurringInvoiceSchedule{}).
				Where("lease_id = ? AND active = ?", l.ID, true).
				Update("active", false).Error
		})
		if err != nil {
			s.log.Errorf("Lifecycle sweep: terminating lease %d: %v", l.ID, err)
			res.Errors++
			continue
		}
		res.Terminated++
	}
}
