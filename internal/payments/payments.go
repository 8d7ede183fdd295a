package payments

import (
	"errors"
	"strings"

	"rental-portal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateAutopayCharge is returned when an autopay payment already
// exists for the invoice. Callers treat it as "already charged", not as a
// failure.
var ErrDuplicateAutopayCharge = errors.New("autopay payment already recorded for invoice")

// Request describes a payment to record against an invoice.
type Request struct {
	InvoiceID       uint
	LeaseID         uint
	UserID          uint
	Amount          float64
	PaymentMethodID uint
	InitiatedBy     string
}

// Recorder is the payment collaborator boundary. Gateway integration lives
// behind it; the core only records settled charges.
type Recorder interface {
	RecordPaymentForInvoice(req Request) (*models.Payment, error)
}

// GormRecorder records payments in the local database.
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder creates a database-backed payment recorder.
func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

// RecordPaymentForInvoice inserts a payment row. For autopay payments the
// unique autopay_invoice_id column rejects a second charge for the same
// invoice; that case surfaces as ErrDuplicateAutopayCharge.
func (r *GormRecorder) RecordPaymentForInvoice(req Request) (*models.Payment, error) {
	payment := &models.Payment{
		InvoiceID:       req.InvoiceID,
		LeaseID:         req.LeaseID,
		UserID:          req.UserID,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
		InitiatedBy:     req.InitiatedBy,
		Reference:       uuid.NewString(),
	}
	if req.InitiatedBy == models.PaymentInitiatedByAutopay {
		id := req.InvoiceID
		payment.AutopayInvoiceID = &id
	}

	if err := r.db.Create(payment).Error; err != nil {
		if payment.AutopayInvoiceID != nil && isUniqueViolation(err) {
			return nil, ErrDuplicateAutopayCharge
		}
		return nil, err
	}
	return payment, nil
}

// isUniqueViolation matches duplicate-key errors across the supported
// drivers (MySQL 1062, Postgres 23505, SQLite "UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
