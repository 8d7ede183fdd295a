package billing

import (
	"testing"
	"time"

	"rental-portal/internal/apperr"
	"rental-portal/internal/audit"
	"rental-portal/internal/models"
	"rental-portal/internal/payments"
)

func newProcessor(t *testing.T, env *setupEnv) *Processor {
	t.Helper()
	return NewProcessor(env.db, payments.NewGormRecorder(env.db), audit.NopSink{}, testLogger())
}

func seedPaymentMethod(t *testing.T, env *setupEnv, tenantID uint) *models.PaymentMethod {
	t.Helper()
	m := &models.PaymentMethod{TenantID: tenantID, Label: "checking"}
	if err := env.db.Create(m).Error; err != nil {
		t.Fatalf("method: %v", err)
	}
	return m
}

func seedEnrollment(t *testing.T, env *setupEnv, methodID uint, maxAmount *float64) *models.AutopayEnrollment {
	t.Helper()
	enr := &models.AutopayEnrollment{
		LeaseID:         env.lease.ID,
		PaymentMethodID: methodID,
		MaxAmount:       maxAmount,
		Active:          true,
	}
	if err := env.db.Create(enr).Error; err != nil {
		t.Fatalf("enrollment: %v", err)
	}
	return enr
}

func seedInvoice(t *testing.T, env *setupEnv, amount float64, due time.Time) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		LeaseID: env.lease.ID,
		Amount:  amount,
		DueDate: due,
		Status:  models.InvoiceStatusUnpaid,
	}
	if err := env.db.Create(inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if err := env.db.Model(&models.Lease{}).Where("id = ?", env.lease.ID).
		Update("balance", amount).Error; err != nil {
		t.Fatalf("balance: %v", err)
	}
	return inv
}

func TestAutopayChargesDueInvoice(t *testing.T) {
	env := newEnv(t)
	proc := newProcessor(t, env)
	method := seedPaymentMethod(t, env, env.lease.TenantID)
	seedEnrollment(t, env, method.ID, nil)

	due := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	inv := seedInvoice(t, env, 1500, due)

	charged, skipped, failed := proc.ProcessAutopayCharges(due.AddDate(0, 0, 1))
	if charged != 1 || skipped != 0 || failed != 0 {
		t.Fatalf("expected 1 charge, got charged=%d skipped=%d failed=%d", charged, skipped, failed)
	}

	var got models.Invoice
	env.db.First(&got, inv.ID)
	if got.Status != models.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
	if got.PaidAt == nil {
		t.Fatal("paid_at not stamped")
	}
	if bal := leaseBalance(t, env.db, env.lease.ID); bal != 0 {
		t.Fatalf("expected balance 0, got %.2f", bal)
	}

	var payment models.Payment
	if err := env.db.Where("invoice_id = ?", inv.ID).First(&payment).Error; err != nil {
		t.Fatalf("payment: %v", err)
	}
	if payment.InitiatedBy != models.PaymentInitiatedByAutopay {
		t.Fatalf("expected autopay initiator, got %s", payment.InitiatedBy)
	}
	if payment.Reference == "" {
		t.Fatal("payment reference not set")
	}
}

func TestAutopayCapSkipsInvoice(t *testing.T) {
	env := newEnv(t)
	proc := newProcessor(t, env)
	method := seedPaymentMethod(t, env, env.lease.TenantID)
	seedEnrollment(t, env, method.ID, floatPtr(1000))

	due := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	inv := seedInvoice(t, env, 1500, due)

	charged, skipped, failed := proc.ProcessAutopayCharges(due.AddDate(0, 0, 1))
	if charged != 0 || skipped != 1 || failed != 0 {
		t.Fatalf("expected cap skip, got charged=%d skipped=%d failed=%d", charged, skipped, failed)
	}

	var got models.Invoice
	env.db.First(&got, inv.ID)
	if got.Status != models.InvoiceStatusUnpaid {
		t.Fatalf("skipped invoice must stay unpaid, got %s", got.Status)
	}
	var count int64
	env.db.Model(&models.Payment{}).Where("invoice_id = ?", inv.ID).Count(&count)
	if count != 0 {
		t.Fatalf("skipped invoice has %d payments", count)
	}
}

func TestAutopayIgnoresFutureInvoices(t *testing.T) {
	env := newEnv(t)
	proc := newProcessor(t, env)
	method := seedPaymentMethod(t, env, env.lease.TenantID)
	seedEnrollment(t, env, method.ID, nil)

	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedInvoice(t, env, 1500, due)

	charged, skipped, failed := proc.ProcessAutopayCharges(due.AddDate(0, 0, -5))
	if charged != 0 || skipped != 0 || failed != 0 {
		t.Fatalf("future invoice charged: charged=%d skipped=%d failed=%d", charged, skipped, failed)
	}
}

func TestAutopayDuplicateChargeGuard(t *testing.T) {
	env := newEnv(t)
	proc := newProcessor(t, env)
	method := seedPaymentMethod(t, env, env.lease.TenantID)
	seedEnrollment(t, env, method.ID, nil)

	due := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	inv := seedInvoice(t, env, 1500, due)

	// an earlier run settled the charge but died before marking the invoice
	id := inv.ID
	prior := models.Payment{
		InvoiceID:        inv.ID,
		LeaseID:          env.lease.ID,
		UserID:           env.lease.TenantID,
		Amount:           1500,
		PaymentMethodID:  method.ID,
		InitiatedBy:      models.PaymentInitiatedByAutopay,
		Reference:        "prior-run",
		AutopayInvoiceID: &id,
	}
	if err := env.db.Create(&prior).Error; err != nil {
		t.Fatalf("prior payment: %v", err)
	}

	charged, _, failed := proc.ProcessAutopayCharges(due.AddDate(0, 0, 1))
	if failed != 0 {
		t.Fatalf("duplicate must not count as failure, failed=%d", failed)
	}
	if charged != 1 {
		t.Fatalf("expected invoice reconciled, charged=%d", charged)
	}

	var got models.Invoice
	env.db.First(&got, inv.ID)
	if got.Status != models.InvoiceStatusPaid {
		t.Fatalf("expected paid after reconciliation, got %s", got.Status)
	}
	var count int64
	env.db.Model(&models.Payment{}).Where("invoice_id = ?", inv.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one payment, got %d", count)
	}
}

func TestConfigureAutopay(t *testing.T) {
	env := newEnv(t)
	proc := newProcessor(t, env)
	method := seedPaymentMethod(t, env, env.lease.TenantID)

	enr, err := proc.ConfigureAutopay(env.lease.ID, method.ID, floatPtr(2000), env.lease.TenantID, models.ActorRoleTenant)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !enr.Active {
		t.Fatal("enrollment not active")
	}
	if enr.MaxAmount == nil || *enr.MaxAmount != 2000 {
		t.Fatal("max amount not stored")
	}

	// reconfiguring updates the same row
	again, err := proc.ConfigureAutopay(env.lease.ID, method.ID, nil, 1, models.ActorRoleManager)
	if err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if again.ID != enr.ID {
		t.Fatalf("reconfigure created a new enrollment: %d vs %d", again.ID, enr.ID)
	}
	if again.MaxAmount != nil {
		t.Fatal("max amount not cleared")
	}
}

func TestConfigureAutopayRejections(t *testing.T) {
	env := newEnv(t)
	proc := newProcessor(t, env)
	ownMethod := seedPaymentMethod(t, env, env.lease.TenantID)
	otherMethod := seedPaymentMethod(t, env, 999)

	_, err := proc.ConfigureAutopay(9999, ownMethod.ID, nil, 1, models.ActorRoleManager)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("missing lease: expected not found, got %v", err)
	}

	_, err = proc.ConfigureAutopay(env.lease.ID, ownMethod.ID, nil, 55, models.ActorRoleTenant)
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("foreign tenant: expected authorization error, got %v", err)
	}

	_, err = proc.ConfigureAutopay(env.lease.ID, otherMethod.ID, nil, 1, models.ActorRoleManager)
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("foreign method: expected authorization error, got %v", err)
	}

	_, err = proc.ConfigureAutopay(env.lease.ID, ownMethod.ID, floatPtr(-5), 1, models.ActorRoleManager)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("negative cap: expected validation error, got %v", err)
	}
}

func TestDisableAutopay(t *testing.T) {
	env := newEnv(t)
	proc := newProcessor(t, env)
	method := seedPaymentMethod(t, env, env.lease.TenantID)
	seedEnrollment(t, env, method.ID, nil)

	if err := proc.DisableAutopay(env.lease.ID, 1, models.ActorRoleManager); err != nil {
		t.Fatalf("disable: %v", err)
	}
	var enr models.AutopayEnrollment
	env.db.Where("lease_id = ?", env.lease.ID).First(&enr)
	if enr.Active {
		t.Fatal("enrollment still active")
	}

	// idempotent, including with no enrollment at all
	if err := proc.DisableAutopay(env.lease.ID, 1, models.ActorRoleManager); err != nil {
		t.Fatalf("second disable: %v", err)
	}

	err := proc.DisableAutopay(env.lease.ID, 55, models.ActorRoleTenant)
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("foreign tenant: expected authorization error, got %v", err)
	}
}
