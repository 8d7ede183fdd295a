package cleanup

import (
	"fmt"
	"time"

	"rental-portal/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service physically purges leases that have stayed closed past the
// retention window, along with their child rows. Every purge leaves a
// DeleteLog entry.
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// Config holds configuration for cleanup operations
type Config struct {
	RetentionDays    int  // Days a lease stays closed before physical deletion
	MaxDeletionCount int  // Safety limit per run
	DryRun           bool // If true, only log what would be deleted
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RetentionDays:    365,
		MaxDeletionCount: 1000,
		DryRun:           false,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	TargetCount   int       `json:"target_count"`
	DeletedCount  int       `json:"deleted_count"`
	ErrorCount    int       `json:"error_count"`
	DryRun        bool      `json:"dry_run"`
	ExecutedAt    time.Time `json:"executed_at"`
	DeletedLeases []uint    `json:"deleted_leases"`
	Errors        []string  `json:"errors,omitempty"`
}

// FindExpiredLeases finds closed leases whose last status change is older
// than retentionDays.
func (s *Service) FindExpiredLeases(retentionDays int) ([]models.Lease, error) {
	var leases []models.Lease

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	err := s.db.Where("status = ? AND updated_at < ?", models.LeaseStatusClosed, cutoff).
		Find(&leases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired leases: %w", err)
	}

	s.log.Infof("Cleanup: found %d leases closed before %s", len(leases), cutoff.Format("2006-01-02"))
	return leases, nil
}

// PhysicallyDelete purges expired closed leases and their children.
func (s *Service) PhysicallyDelete(cfg Config) (*Result, error) {
	result := &Result{
		DryRun:     cfg.DryRun,
		ExecutedAt: time.Now(),
	}

	expired, err := s.FindExpiredLeases(cfg.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expired)
	if result.TargetCount == 0 {
		s.log.Info("Cleanup: no expired leases found for deletion")
		return result, nil
	}

	// Safety check: abort if too many leases would be deleted
	if result.TargetCount > cfg.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d leases exceed max deletion limit of %d",
			result.TargetCount, cfg.MaxDeletionCount)
	}

	for i := range expired {
		l := expired[i]

		if cfg.DryRun {
			s.log.Infof("Cleanup: [dry-run] would delete lease %d (tenant %d, unit %d)",
				l.ID, l.TenantID, l.UnitID)
			result.DeletedLeases = append(result.DeletedLeases, l.ID)
			result.DeletedCount++
			continue
		}

		if err := s.purgeLease(&l); err != nil {
			msg := fmt.Sprintf("failed to delete lease %d: %v", l.ID, err)
			s.log.Errorf("Cleanup: %s", msg)
			result.Errors = append(result.Errors, msg)
			result.ErrorCount++
			continue
		}

		s.log.Infof("Cleanup: physically deleted lease %d (tenant %d, unit %d)",
			l.ID, l.TenantID, l.UnitID)
		result.DeletedLeases = append(result.DeletedLeases, l.ID)
		result.DeletedCount++
	}

	s.log.Infof("Cleanup: completed %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, cfg.DryRun)
	return result, nil
}

func (s *Service) purgeLease(l *models.Lease) error {
	closedAt := l.UpdatedAt
	return s.db.Transaction(func(tx *gorm.DB) error {
		entry := models.DeleteLog{
			LeaseID:  l.ID,
			TenantID: l.TenantID,
			UnitID:   l.UnitID,
			Status:   l.Status,
			ClosedAt: &closedAt,
			Reason:   models.DeleteReasonRetention,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var invoiceIDs []uint
		if err := tx.Model(&models.Invoice{}).Where("lease_id = ?", l.ID).
			Pluck("id", &invoiceIDs).Error; err != nil {
			return err
		}
		if len(invoiceIDs) > 0 {
			if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&models.LateFee{}).Error; err != nil {
				return err
			}
		}

		for _, child := range []interface{}{
			&models.Payment{},
			&models.Invoice{},
			&models.RecurringInvoiceSchedule{},
			&models.AutopayEnrollment{},
			&models.LeaseRenewalOffer{},
			&models.LeaseNotice{},
			&models.LeaseHistory{},
		} {
			if err := tx.Where("lease_id = ?", l.ID).Delete(child).Error; err != nil {
				return err
			}
		}

		return tx.Delete(l).Error
	})
}

// GetDeleteStats returns statistics about purged leases
func (s *Service) GetDeleteStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalDeleted int64
	if err := s.db.Model(&models.DeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	var recentDeleted int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	var pendingPurge int64
	if err := s.db.Model(&models.Lease{}).
		Where("status = ?", models.LeaseStatusClosed).
		Count(&pendingPurge).Error; err != nil {
		return nil, err
	}
	stats["closed_pending_purge"] = pendingPurge

	return stats, nil
}

// GetDeleteLogs returns recent delete log entries
func (s *Service) GetDeleteLogs(limit int) ([]models.DeleteLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.DeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
