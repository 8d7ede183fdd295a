package billing

import (
	"fmt"
	"io"
	"testing"
	"time"

	"rental-portal/internal/audit"
	"rental-portal/internal/database"
	"rental-portal/internal/models"
	"rental-portal/internal/payments"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.NewFromGorm(gdb).InitSchema(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedLease(t *testing.T, gdb *gorm.DB, tenantID, unitID uint, rent float64) *models.Lease {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &models.Lease{
		TenantID:   tenantID,
		UnitID:     unitID,
		Status:     models.LeaseStatusActive,
		StartDate:  start,
		EndDate:    start.AddDate(1, 0, 0),
		RentAmount: rent,
	}
	if err := gdb.Create(l).Error; err != nil {
		t.Fatalf("seed lease: %v", err)
	}
	return l
}

func newScheduleService(t *testing.T, gdb *gorm.DB) *ScheduleService {
	t.Helper()
	return NewScheduleService(gdb, audit.NopSink{}, testLogger())
}

func newTestCycle(t *testing.T, gdb *gorm.DB) *Cycle {
	t.Helper()
	log := testLogger()
	schedules := NewScheduleService(gdb, audit.NopSink{}, log)
	assessor := NewAssessor(gdb, log)
	processor := NewProcessor(gdb, payments.NewGormRecorder(gdb), audit.NopSink{}, log)
	return NewCycle(schedules, assessor, processor, log)
}

func leaseBalance(t *testing.T, gdb *gorm.DB, id uint) float64 {
	t.Helper()
	var l models.Lease
	if err := gdb.First(&l, id).Error; err != nil {
		t.Fatalf("load lease: %v", err)
	}
	return l.Balance
}

// setupEnv bundles the test database with one seeded active lease.
type setupEnv struct {
	db    *gorm.DB
	lease *models.Lease
}

func newEnv(t *testing.T) *setupEnv {
	t.Helper()
	gdb := setupDB(t)
	return &setupEnv{db: gdb, lease: seedLease(t, gdb, 10, 20, 1500)}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
