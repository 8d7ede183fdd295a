package billing

import (
	"errors"
	"time"

	"rental-portal/internal/apperr"
	"rental-portal/internal/audit"
	"rental-portal/internal/models"
	"rental-portal/internal/payments"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Processor executes autopay charges for enrolled leases through the
// payment collaborator.
type Processor struct {
	db       *gorm.DB
	recorder payments.Recorder
	sink     audit.Sink
	log      *logrus.Logger
}

// NewProcessor creates an autopay processor.
func NewProcessor(db *gorm.DB, recorder payments.Recorder, sink audit.Sink, log *logrus.Logger) *Processor {
	return &Processor{db: db, recorder: recorder, sink: sink, log: log}
}

// ProcessAutopayCharges charges every due unpaid invoice of every active
// enrollment. An invoice above the enrollment cap is skipped with a
// warning; a collaborator failure is logged and the batch continues. A
// failed invoice stays unpaid, so the next day's cycle re-attempts it.
func (p *Processor) ProcessAutopayCharges(asOf time.Time) (charged int, skipped int, failed int) {
	var enrollments []models.AutopayEnrollment
	if err := p.db.Where("active = ?", true).Find(&enrollments).Error; err != nil {
		p.log.Errorf("Billing: listing autopay enrollments: %v", err)
		return 0, 0, 1
	}

	for i := range enrollments {
		enr := enrollments[i]

		var lease models.Lease
		if err := p.db.First(&lease, enr.LeaseID).Error; err != nil {
			p.log.Errorf("Billing: autopay enrollment %d: loading lease %d: %v", enr.ID, enr.LeaseID, err)
			failed++
			continue
		}

		var invoices []models.Invoice
		err := p.db.Where("lease_id = ? AND status = ? AND due_date <= ?",
			enr.LeaseID, models.InvoiceStatusUnpaid, asOf).
			Order("due_date ASC").
			Find(&invoices).Error
		if err != nil {
			p.log.Errorf("Billing: autopay enrollment %d: listing invoices: %v", enr.ID, err)
			failed++
			continue
		}

		for j := range invoices {
			inv := invoices[j]

			if enr.MaxAmount != nil && inv.Amount > *enr.MaxAmount {
				p.log.Warnf("Billing: autopay skipping invoice %d (%.2f exceeds cap %.2f on lease %d)",
					inv.ID, inv.Amount, *enr.MaxAmount, enr.LeaseID)
				skipped++
				continue
			}

			if err := p.chargeInvoice(&lease, &enr, &inv); err != nil {
				p.log.Errorf("Billing: autopay charge for invoice %d: %v", inv.ID, err)
				failed++
				continue
			}
			charged++
		}
	}

	if charged > 0 || skipped > 0 || failed > 0 {
		p.log.Infof("Billing: autopay charged %d invoices (%d skipped, %d failures)", charged, skipped, failed)
	}
	return charged, skipped, failed
}

func (p *Processor) chargeInvoice(lease *models.Lease, enr *models.AutopayEnrollment, inv *models.Invoice) error {
	_, err := p.recorder.RecordPaymentForInvoice(payments.Request{
		InvoiceID:       inv.ID,
		LeaseID:         lease.ID,
		UserID:          lease.TenantID,
		Amount:          inv.Amount,
		PaymentMethodID: enr.PaymentMethodID,
		InitiatedBy:     models.PaymentInitiatedByAutopay,
	})
	if errors.Is(err, payments.ErrDuplicateAutopayCharge) {
		// already charged by an earlier run that failed before settling;
		// just bring the invoice in line
		p.log.Warnf("Billing: invoice %d already autopay-charged, marking paid", inv.ID)
	} else if err != nil {
		return err
	}

	now := time.Now()
	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
			Updates(map[string]interface{}{
				"status":  models.InvoiceStatusPaid,
				"paid_at": &now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Lease{}).Where("id = ?", lease.ID).
			Update("balance", gorm.Expr("balance - ?", inv.Amount)).Error
	})
}

// ConfigureAutopay enrolls a lease in autopay, or updates its enrollment.
// Tenant actors may only configure their own lease, and the payment method
// must belong to the lease's tenant.
func (p *Processor) ConfigureAutopay(leaseID, paymentMethodID uint, maxAmount *float64, actorID uint, actorRole string) (*models.AutopayEnrollment, error) {
	var lease models.Lease
	if err := p.db.First(&lease, leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lease %d not found", leaseID)
		}
		return nil, err
	}
	if actorRole == models.ActorRoleTenant && actorID != lease.TenantID {
		return nil, apperr.Authorization("user %d is not the tenant of lease %d", actorID, leaseID)
	}

	var method models.PaymentMethod
	if err := p.db.First(&method, paymentMethodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment method %d not found", paymentMethodID)
		}
		return nil, err
	}
	if method.TenantID != lease.TenantID {
		return nil, apperr.Authorization("payment method %d does not belong to the lease tenant", paymentMethodID)
	}
	if maxAmount != nil && *maxAmount <= 0 {
		return nil, apperr.Validation("max_amount must be positive when set")
	}

	enr := models.AutopayEnrollment{
		LeaseID:         leaseID,
		PaymentMethodID: paymentMethodID,
		MaxAmount:       maxAmount,
		Active:          true,
	}

	var existing models.AutopayEnrollment
	result := p.db.Where("lease_id = ?", leaseID).First(&existing)
	if result.Error == nil {
		enr.ID = existing.ID
		enr.CreatedAt = existing.CreatedAt
		if err := p.db.Save(&enr).Error; err != nil {
			return nil, err
		}
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := p.db.Create(&enr).Error; err != nil {
			return nil, err
		}
	} else {
		return nil, result.Error
	}

	p.sink.Emit(audit.EventAutopayEnabled, map[string]interface{}{
		"lease_id":          leaseID,
		"payment_method_id": paymentMethodID,
		"actor_id":          actorID,
	})
	p.log.Infof("Autopay configured for lease %d (method %d)", leaseID, paymentMethodID)
	return &enr, nil
}

// DisableAutopay switches a lease's enrollment off. Tenant actors may only
// disable their own lease's autopay.
func (p *Processor) DisableAutopay(leaseID uint, actorID uint, actorRole string) error {
	var lease models.Lease
	if err := p.db.First(&lease, leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("lease %d not found", leaseID)
		}
		return err
	}
	if actorRole == models.ActorRoleTenant && actorID != lease.TenantID {
		return apperr.Authorization("user %d is not the tenant of lease %d", actorID, leaseID)
	}

	var enr models.AutopayEnrollment
	err := p.db.Where("lease_id = ?", leaseID).First(&enr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if enr.Active {
		if err := p.db.Model(&enr).Update("active", false).Error; err != nil {
			return err
		}
	}

	p.sink.Emit(audit.EventAutopayDisabled, map[string]interface{}{
		"lease_id": leaseID,
		"actor_id": actorID,
	})
	return nil
}
