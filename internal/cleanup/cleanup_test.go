package cleanup

import (
	"fmt"
	"io"
	"testing"
	"time"

	"rental-portal/internal/database"
	"rental-portal/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.NewFromGorm(gdb).InitSchema(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(gdb, log), gdb
}

// seedClosedLease creates a closed lease whose last change is daysAgo in
// the past, with one child row per table.
func seedClosedLease(t *testing.T, gdb *gorm.DB, tenantID, unitID uint, daysAgo int) *models.Lease {
	t.Helper()
	start := time.Now().AddDate(-2, 0, 0)
	l := &models.Lease{
		TenantID:   tenantID,
		UnitID:     unitID,
		Status:     models.LeaseStatusClosed,
		StartDate:  start,
		EndDate:    start.AddDate(1, 0, 0),
		RentAmount: 1500,
	}
	if err := gdb.Create(l).Error; err != nil {
		t.Fatalf("lease: %v", err)
	}

	inv := models.Invoice{LeaseID: l.ID, Amount: 1500, DueDate: start, Status: models.InvoiceStatusPaid}
	if err := gdb.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	children := []interface{}{
		&models.LateFee{InvoiceID: inv.ID, Amount: 50, Waived: true},
		&models.Payment{InvoiceID: inv.ID, LeaseID: l.ID, Amount: 1500, InitiatedBy: models.PaymentInitiatedByManual, Reference: fmt.Sprintf("ref-%d", l.ID)},
		&models.RecurringInvoiceSchedule{LeaseID: l.ID, Amount: 1500, Frequency: models.FrequencyMonthly, NextRun: start},
		&models.LeaseHistory{LeaseID: l.ID, ToStatus: models.LeaseStatusClosed},
		&models.LeaseNotice{LeaseID: l.ID, Type: models.NoticeTypeOther},
	}
	for _, c := range children {
		if err := gdb.Create(c).Error; err != nil {
			t.Fatalf("child: %v", err)
		}
	}

	// push the last change into the past
	old := time.Now().AddDate(0, 0, -daysAgo)
	if err := gdb.Model(&models.Lease{}).Where("id = ?", l.ID).
		UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	return l
}

func TestFindExpiredLeases(t *testing.T) {
	svc, gdb := setupService(t)
	old := seedClosedLease(t, gdb, 10, 20, 400)
	seedClosedLease(t, gdb, 11, 21, 100) // inside retention

	expired, err := svc.FindExpiredLeases(365)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired lease, got %d", len(expired))
	}
	if expired[0].ID != old.ID {
		t.Fatalf("wrong lease selected: %d", expired[0].ID)
	}
}

func TestFindExpiredIgnoresOpenLeases(t *testing.T) {
	svc, gdb := setupService(t)
	l := seedClosedLease(t, gdb, 10, 20, 400)
	gdb.Model(&models.Lease{}).Where("id = ?", l.ID).
		UpdateColumn("status", models.LeaseStatusTerminated)

	expired, err := svc.FindExpiredLeases(365)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("terminated (not closed) lease selected for purge")
	}
}

func TestDryRunDeletesNothing(t *testing.T) {
	svc, gdb := setupService(t)
	seedClosedLease(t, gdb, 10, 20, 400)

	res, err := svc.PhysicallyDelete(Config{RetentionDays: 365, MaxDeletionCount: 100, DryRun: true})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.TargetCount != 1 || res.DeletedCount != 1 || !res.DryRun {
		t.Fatalf("unexpected result %+v", res)
	}

	var leases, logs int64
	gdb.Model(&models.Lease{}).Count(&leases)
	gdb.Model(&models.DeleteLog{}).Count(&logs)
	if leases != 1 {
		t.Fatalf("dry run deleted a lease")
	}
	if logs != 0 {
		t.Fatalf("dry run wrote a delete log")
	}
}

func TestPhysicalDeletePurgesChildren(t *testing.T) {
	svc, gdb := setupService(t)
	l := seedClosedLease(t, gdb, 10, 20, 400)

	res, err := svc.PhysicallyDelete(Config{RetentionDays: 365, MaxDeletionCount: 100})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.DeletedCount != 1 || res.ErrorCount != 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	counts := map[string]int64{}
	for name, model := range map[string]interface{}{
		"leases":    &models.Lease{},
		"invoices":  &models.Invoice{},
		"late_fees": &models.LateFee{},
		"payments":  &models.Payment{},
		"schedules": &models.RecurringInvoiceSchedule{},
		"history":   &models.LeaseHistory{},
		"notices":   &models.LeaseNotice{},
	} {
		var n int64
		gdb.Model(model).Count(&n)
		counts[name] = n
	}
	for name, n := range counts {
		if n != 0 {
			t.Errorf("%s not purged: %d rows left", name, n)
		}
	}

	var entry models.DeleteLog
	if err := gdb.Where("lease_id = ?", l.ID).First(&entry).Error; err != nil {
		t.Fatalf("delete log: %v", err)
	}
	if entry.Reason != models.DeleteReasonRetention {
		t.Fatalf("expected retention reason, got %s", entry.Reason)
	}
}

func TestSafetyLimitAborts(t *testing.T) {
	svc, gdb := setupService(t)
	seedClosedLease(t, gdb, 10, 20, 400)
	seedClosedLease(t, gdb, 11, 21, 400)

	_, err := svc.PhysicallyDelete(Config{RetentionDays: 365, MaxDeletionCount: 1})
	if err == nil {
		t.Fatal("expected safety limit error")
	}

	var leases int64
	gdb.Model(&models.Lease{}).Count(&leases)
	if leases != 2 {
		t.Fatalf("aborted run deleted leases: %d left", leases)
	}
}

func TestGetDeleteStats(t *testing.T) {
	svc, gdb := setupService(t)
	seedClosedLease(t, gdb, 10, 20, 400)
	seedClosedLease(t, gdb, 11, 21, 100)

	if _, err := svc.PhysicallyDelete(Config{RetentionDays: 365, MaxDeletionCount: 100}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stats, err := svc.GetDeleteStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats["total_deleted"].(int64) != 1 {
		t.Fatalf("expected 1 deleted, got %v", stats["total_deleted"])
	}
	if stats["closed_pending_purge"].(int64) != 1 {
		t.Fatalf("expected 1 pending purge, got %v", stats["closed_pending_purge"])
	}

	logs, err := svc.GetDeleteLogs(10)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
}
