package lease

import (
	"errors"
	"time"

	"rental-portal/internal/apperr"
	"rental-portal/internal/audit"
	"rental-portal/internal/database"
	"rental-portal/internal/history"
	"rental-portal/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// renewalDueFallbackDays is how far before lease end a renewal response is
// due when the offer carries no explicit expiry.
const renewalDueFallbackDays = 30

// Actor identifies who performs a lifecycle operation.
type Actor struct {
	ID   uint
	Role string
}

var systemActor = Actor{ID: 0, Role: models.ActorRoleSystem}

// Service is the lease lifecycle controller: status transitions, renewal
// offers and notices, each change appended to the lease history.
type Service struct {
	store   *database.DB
	history *history.Service
	sink    audit.Sink
	log     *logrus.Logger
}

// NewService creates a lifecycle controller.
func NewService(store *database.DB, hist *history.Service, sink audit.Sink, log *logrus.Logger) *Service {
	return &Service{store: store, history: hist, sink: sink, log: log}
}

// CreateLeaseParams carries the terms for a new lease.
type CreateLeaseParams struct {
	TenantID          uint
	UnitID            uint
	Status            models.LeaseStatus
	StartDate         time.Time
	EndDate           time.Time
	RentAmount        float64
	DepositAmount     float64
	NoticePeriodDays  int
	AutoRenew         bool
	AutoRenewLeadDays int
	EscalationPercent float64
}

// CreateLease validates the terms and persists the lease. Manager-created
// leases default to active.
func (s *Service) CreateLease(p CreateLeaseParams, actor Actor) (*models.Lease, error) {
	if p.TenantID == 0 || p.UnitID == 0 {
		return nil, apperr.Validation("tenant_id and unit_id are required")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return nil, apperr.Validation("start_date and end_date are required")
	}
	if !p.StartDate.Before(p.EndDate) {
		return nil, apperr.Validation("start_date must be before end_date")
	}
	if p.RentAmount <= 0 {
		return nil, apperr.Validation("rent_amount must be positive")
	}

	status := p.Status
	if status == "" {
		status = models.LeaseStatusActive
	}
	switch status {
	case models.LeaseStatusDraft, models.LeaseStatusPendingApproval, models.LeaseStatusActive:
	default:
		return nil, apperr.Validation("invalid initial status %q", status)
	}

	lease := &models.Lease{
		TenantID:          p.TenantID,
		UnitID:            p.UnitID,
		Status:            status,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		RentAmount:        p.RentAmount,
		DepositAmount:     p.DepositAmount,
		NoticePeriodDays:  p.NoticePeriodDays,
		AutoRenew:         p.AutoRenew,
		AutoRenewLeadDays: p.AutoRenewLeadDays,
		EscalationPercent: p.EscalationPercent,
	}
	if lease.NoticePeriodDays == 0 {
		lease.NoticePeriodDays = 30
	}
	if lease.AutoRenew && lease.AutoRenewLeadDays == 0 {
		lease.AutoRenewLeadDays = 60
	}

	if err := s.store.CreateLease(lease, actor.ID, actor.Role); err != nil {
		return nil, err
	}

	s.log.Infof("Lease %d created for tenant %d, unit %d (%s)",
		lease.ID, lease.TenantID, lease.UnitID, lease.Status)
	return lease, nil
}

// UpdateLeaseStatus applies an administrative status change. The change
// must appear in the transition table; the history row records from/to
// status and the monetary snapshot.
func (s *Service) UpdateLeaseStatus(id uint, newStatus models.LeaseStatus, actor Actor, note string) (*models.Lease, error) {
	lease, err := s.store.GetLease(id)
	if err != nil {
		return nil, err
	}

	err = s.store.DB().Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, lease, newStatus, actor, note, nil)
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

// transition validates against the table, writes the lease and its history
// row on tx, and emits the audit event.
func (s *Service) transition(tx *gorm.DB, lease *models.Lease, to models.LeaseStatus, actor Actor, note string, meta map[string]interface{}) error {
	from := lease.Status
	if !CanTransition(from, to) {
		return apperr.InvalidState("lease %d cannot move from %s to %s", lease.ID, from, to)
	}

	lease.Status = to
	if err := tx.Save(lease).Error; err != nil {
		return err
	}
	if err := s.history.Append(tx, lease, history.Entry{
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Note:       note,
		Metadata:   meta,
	}); err != nil {
		return err
	}

	s.sink.Emit(audit.EventLeaseStatusChanged, map[string]interface{}{
		"lease_id": lease.ID,
		"from":     string(from),
		"to":       string(to),
		"actor_id": actor.ID,
	})
	return nil
}

// OfferParams carries a proposed renewal term.
type OfferParams struct {
	ProposedRent      float64
	ProposedStart     time.Time
	ProposedEnd       time.Time
	EscalationPercent float64
	Message           string
	ExpiresAt         *time.Time
}

// CreateRenewalOffer opens renewal negotiation: the offer is stored, the
// lease moves to renewal_pending and its renewal timestamps are set.
func (s *Service) CreateRenewalOffer(leaseID uint, p OfferParams, actor Actor) (*models.LeaseRenewalOffer, error) {
	if p.ProposedRent <= 0 {
		return nil, apperr.Validation("proposed_rent must be positive")
	}
	if !p.ProposedStart.Before(p.ProposedEnd) {
		return nil, apperr.Validation("proposed_start must be before proposed_end")
	}

	lease, err := s.store.GetLease(leaseID)
	if err != nil {
		return nil, err
	}

	offer := &models.LeaseRenewalOffer{
		LeaseID:           lease.ID,
		ProposedRent:      p.ProposedRent,
		ProposedStart:     p.ProposedStart,
		ProposedEnd:       p.ProposedEnd,
		EscalationPercent: p.EscalationPercent,
		Message:           p.Message,
		Status:            models.RenewalOfferStatusOffered,
		ExpiresAt:         p.ExpiresAt,
		CreatedBy:         actor.ID,
	}

	err = s.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(offer).Error; err != nil {
			return err
		}

		now := time.Now()
		lease.RenewalOfferedAt = &now
		switch {
		case p.ExpiresAt != nil:
			lease.RenewalDueAt = p.ExpiresAt
		case lease.RenewalDueAt != nil:
			// keep the existing due date
		default:
			due := lease.EndDate.AddDate(0, 0, -renewalDueFallbackDays)
			lease.RenewalDueAt = &due
		}

		return s.transition(tx, lease, models.LeaseStatusRenewalPending, actor,
			"Renewal offer created", map[string]interface{}{
				"offer_id":      offer.ID,
				"proposed_rent": p.ProposedRent,
			})
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Renewal offer %d created for lease %d (proposed rent %.2f)",
		offer.ID, lease.ID, p.ProposedRent)
	return offer, nil
}

// Renewal decisions.
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

// RespondToRenewalOffer resolves an offer on behalf of the lease's tenant.
// Accepting rewrites the lease term; declining leaves the lease awaiting a
// fresh offer. Offer and lease updates are one transaction.
func (s *Service) RespondToRenewalOffer(leaseID, offerID uint, decision string, responderID uint) (*models.LeaseRenewalOffer, error) {
	if decision != DecisionAccept && decision != DecisionDecline {
		return nil, apperr.Validation("decision must be %q or %q", DecisionAccept, DecisionDecline)
	}

	lease, err := s.store.GetLease(leaseID)
	if err != nil {
		return nil, err
	}
	if lease.TenantID != responderID {
		return nil, apperr.Authorization("user %d is not the tenant of lease %d", responderID, leaseID)
	}

	var offer models.LeaseRenewalOffer
	if err := s.store.DB().Where("id = ? AND lease_id = ?", offerID, leaseID).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("renewal offer %d not found for lease %d", offerID, leaseID)
		}
		return nil, err
	}
	if offer.Status != models.RenewalOfferStatusOffered {
		return nil, apperr.InvalidState("renewal offer %d already resolved (%s)", offer.ID, offer.Status)
	}

	now := time.Now()
	if decision == DecisionAccept && offer.Expired(now) {
		return nil, apperr.Validation("renewal offer %d expired at %s", offer.ID, offer.ExpiresAt.Format(time.RFC3339))
	}

	actor := Actor{ID: responderID, Role: models.ActorRoleTenant}

	err = s.store.DB().Transaction(func(tx *gorm.DB) error {
		offer.ResponderID = &responderID
		offer.RespondedAt = &now

		if decision == DecisionAccept {
			offer.Status = models.RenewalOfferStatusAccepted
			if err := tx.Save(&offer).Error; err != nil {
				return err
			}

			lease.RentAmount = offer.ProposedRent
			lease.StartDate = offer.ProposedStart
			lease.EndDate = offer.ProposedEnd
			lease.EscalationPercent = offer.EscalationPercent
			lease.RenewalAcceptedAt = &now
			lease.RenewalDueAt = nil
			// cleared so the renewed term is eligible for auto-renewal again
			lease.RenewalOfferedAt = nil
			if offer.EscalationPercent > 0 {
				start := offer.ProposedStart
				lease.EscalationEffectiveAt = &start
			}

			return s.transition(tx, lease, models.LeaseStatusActive, actor,
				"Renewal offer accepted", map[string]interface{}{
					"offer_id": offer.ID,
					"new_rent": offer.ProposedRent,
				})
		}

		offer.Status = models.RenewalOfferStatusDeclined
		if err := tx.Save(&offer).Error; err != nil {
			return err
		}
		// lease stays in renewal_pending awaiting a fresh offer
		return s.transition(tx, lease, models.LeaseStatusRenewalPending, actor,
			"Renewal offer declined", map[string]interface{}{"offer_id": offer.ID})
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Renewal offer %d on lease %d %sed by tenant %d", offer.ID, lease.ID, decision, responderID)
	return &offer, nil
}

// NoticeParams carries a notice submission.
type NoticeParams struct {
	Type           models.NoticeType
	DeliveryMethod string
	Message        string
	EffectiveAt    *time.Time
}

// SubmitTenantNotice records a notice from the lease's tenant. A move-out
// notice also moves the lease to notice_given and stamps the move-out date;
// notice and lease are written in one transaction.
func (s *Service) SubmitTenantNotice(leaseID uint, p NoticeParams, tenantID uint) (*models.LeaseNotice, error) {
	lease, err := s.store.GetLease(leaseID)
	if err != nil {
		return nil, err
	}
	if lease.TenantID != tenantID {
		return nil, apperr.Authorization("user %d is not the tenant of lease %d", tenantID, leaseID)
	}

	actor := Actor{ID: tenantID, Role: models.ActorRoleTenant}
	return s.recordNotice(lease, p, actor)
}

// RecordLeaseNotice is the manager-initiated equivalent of
// SubmitTenantNotice.
func (s *Service) RecordLeaseNotice(leaseID uint, p NoticeParams, creatorID uint) (*models.LeaseNotice, error) {
	lease, err := s.store.GetLease(leaseID)
	if err != nil {
		return nil, err
	}

	actor := Actor{ID: creatorID, Role: models.ActorRoleManager}
	return s.recordNotice(lease, p, actor)
}

func (s *Service) recordNotice(lease *models.Lease, p NoticeParams, actor Actor) (*models.LeaseNotice, error) {
	switch p.Type {
	case models.NoticeTypeMoveIn, models.NoticeTypeMoveOut, models.NoticeTypeOther:
	default:
		return nil, apperr.Validation("invalid notice type %q", p.Type)
	}
	if p.Type == models.NoticeTypeMoveOut && p.EffectiveAt == nil {
		return nil, apperr.Validation("move-out notice requires an effective date")
	}

	notice := &models.LeaseNotice{
		LeaseID:        lease.ID,
		Type:           p.Type,
		DeliveryMethod: p.DeliveryMethod,
		Message:        p.Message,
		EffectiveAt:    p.EffectiveAt,
		CreatedBy:      actor.ID,
		CreatorRole:    actor.Role,
	}

	err := s.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notice).Error; err != nil {
			return err
		}

		switch p.Type {
		case models.NoticeTypeMoveOut:
			lease.MoveOutAt = p.EffectiveAt
			lease.TerminationRequestedBy = actor.Role
			lease.TerminationReason = p.Message
			if lease.TerminationReason == "" {
				lease.TerminationReason = "move-out notice"
			}
			return s.transition(tx, lease, models.LeaseStatusNoticeGiven, actor,
				"Move-out notice recorded", map[string]interface{}{
					"notice_id":   notice.ID,
					"move_out_at": p.EffectiveAt,
				})
		case models.NoticeTypeMoveIn:
			lease.MoveInAt = p.EffectiveAt
			if err := tx.Save(lease).Error; err != nil {
				return err
			}
			return s.history.Append(tx, lease, history.Entry{
				FromStatus: lease.Status,
				ToStatus:   lease.Status,
				ActorID:    actor.ID,
				ActorRole:  actor.Role,
				Note:       "Move-in notice recorded",
				Metadata:   map[string]interface{}{"notice_id": notice.ID},
			})
		default:
			return s.history.Append(tx, lease, history.Entry{
				FromStatus: lease.Status,
				ToStatus:   lease.Status,
				ActorID:    actor.ID,
				ActorRole:  actor.Role,
				Note:       "Notice recorded",
				Metadata:   map[string]interface{}{"notice_id": notice.ID},
			})
		}
	})
	if err != nil {
		return nil, err
	}

	return notice, nil
}
