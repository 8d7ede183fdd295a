package billing

import (
	"errors"
	"time"

	"rental-portal/internal/apperr"
	"rental-portal/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Assessor applies late fees to overdue invoices. A fee is a one-time,
// monotonic charge: an invoice with an active fee is never charged again.
type Assessor struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewAssessor creates a late fee assessor.
func NewAssessor(db *gorm.DB, log *logrus.Logger) *Assessor {
	return &Assessor{db: db, log: log}
}

// ApplyLateFees scans unpaid schedule-generated invoices whose schedule
// defines a fee and a grace period. When dueDate+grace has passed and no
// active fee exists yet, it creates the fee and inflates the invoice
// amount. Re-running the scan never double-charges.
func (a *Assessor) ApplyLateFees(asOf time.Time) (assessed int, failed int) {
	var invoices []models.Invoice
	err := a.db.Where("status = ? AND schedule_id IS NOT NULL AND due_date <= ?",
		models.InvoiceStatusUnpaid, asOf).Find(&invoices).Error
	if err != nil {
		a.log.Errorf("Billing: listing overdue invoices: %v", err)
		return 0, 1
	}

	for i := range invoices {
		inv := invoices[i]
		ok, err := a.assessInvoice(&inv, asOf)
		if err != nil {
			a.log.Errorf("Billing: late fee for invoice %d: %v", inv.ID, err)
			failed++
			continue
		}
		if ok {
			assessed++
		}
	}

	if assessed > 0 || failed > 0 {
		a.log.Infof("Billing: assessed %d late fees (%d failures)", assessed, failed)
	}
	return assessed, failed
}

func (a *Assessor) assessInvoice(inv *models.Invoice, asOf time.Time) (bool, error) {
	var sched models.RecurringInvoiceSchedule
	if err := a.db.First(&sched, *inv.ScheduleID).Error; err != nil {
		return false, err
	}
	if !sched.AssessesLateFees() {
		return false, nil
	}

	assessAt := inv.DueDate.AddDate(0, 0, *sched.LateFeeAfterDays)
	if assessAt.After(asOf) {
		return false, nil
	}

	var active int64
	if err := a.db.Model(&models.LateFee{}).
		Where("invoice_id = ? AND waived = ?", inv.ID, false).
		Count(&active).Error; err != nil {
		return false, err
	}
	if active > 0 {
		return false, nil
	}

	fee := *sched.LateFeeAmount
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.LateFee{InvoiceID: inv.ID, Amount: fee}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
			Update("amount", gorm.Expr("amount + ?", fee)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Lease{}).Where("id = ?", inv.LeaseID).
			Update("balance", gorm.Expr("balance + ?", fee)).Error
	})
	if err != nil {
		return false, err
	}

	a.log.Infof("Billing: late fee %.2f assessed on invoice %d (due %s)",
		fee, inv.ID, inv.DueDate.Format("2006-01-02"))
	return true, nil
}

// WaiveLateFee waives the invoice's active fee and deflates the invoice
// amount back. Returns NotFound when the invoice has no active fee.
func (a *Assessor) WaiveLateFee(invoiceID uint) error {
	var fee models.LateFee
	err := a.db.Where("invoice_id = ? AND waived = ?", invoiceID, false).First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("invoice %d has no active late fee", invoiceID)
	}
	if err != nil {
		return err
	}

	var inv models.Invoice
	if err := a.db.First(&inv, invoiceID).Error; err != nil {
		return err
	}

	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&fee).Update("waived", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
			Update("amount", gorm.Expr("amount - ?", fee.Amount)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Lease{}).Where("id = ?", inv.LeaseID).
			Update("balance", gorm.Expr("balance - ?", fee.Amount)).Error
	})
}
