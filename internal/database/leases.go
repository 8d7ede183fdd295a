package database

import (
	"errors"
	"time"

	"rental-portal/internal/apperr"
	"rental-portal/internal/models"

	"gorm.io/gorm"
)

// CreateLease persists a new lease after enforcing the store's uniqueness
// constraints: at most one occupied lease per tenant and per unit. The
// lease and its first history row are written in one transaction.
func (d *DB) CreateLease(lease *models.Lease, actorID uint, actorRole string) error {
	occupied := []models.LeaseStatus{
		models.LeaseStatusDraft,
		models.LeaseStatusPendingApproval,
		models.LeaseStatusActive,
		models.LeaseStatusRenewalPending,
		models.LeaseStatusNoticeGiven,
		models.LeaseStatusTerminating,
		models.LeaseStatusHoldover,
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Lease{}).
			Where("tenant_id = ? AND status IN ?", lease.TenantID, occupied).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("tenant %d already holds an active lease", lease.TenantID)
		}

		if err := tx.Model(&models.Lease{}).
			Where("unit_id = ? AND status IN ?", lease.UnitID, occupied).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("unit %d already holds an active lease", lease.UnitID)
		}

		if err := tx.Create(lease).Error; err != nil {
			return err
		}

		entry := models.LeaseHistory{
			LeaseID:    lease.ID,
			ToStatus:   lease.Status,
			ActorID:    actorID,
			ActorRole:  actorRole,
			Note:       "Lease created",
			RentAmount: lease.RentAmount,
			Balance:    lease.Balance,
		}
		return tx.Create(&entry).Error
	})
}

// GetLease fetches a lease by id.
func (d *DB) GetLease(id uint) (*models.Lease, error) {
	var lease models.Lease
	if err := d.db.First(&lease, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("lease %d not found", id)
		}
		return nil, err
	}
	return &lease, nil
}

// LeasesByStatus lists leases in the given statuses.
func (d *DB) LeasesByStatus(statuses ...models.LeaseStatus) ([]models.Lease, error) {
	var leases []models.Lease
	err := d.db.Where("status IN ?", statuses).Find(&leases).Error
	return leases, err
}

// ExpiredActiveLeases returns occupied-term leases whose end date has
// passed, candidates for holdover.
func (d *DB) ExpiredActiveLeases(asOf time.Time) ([]models.Lease, error) {
	var leases []models.Lease
	err := d.db.Where("status = ? AND end_date < ?", models.LeaseStatusActive, asOf).
		Find(&leases).Error
	return leases, err
}

// CountByStatus returns lease counts keyed by status.
func (d *DB) CountByStatus() (map[models.LeaseStatus]int64, error) {
	type row struct {
		Status models.LeaseStatus
		N      int64
	}
	var rows []row
	err := d.db.Model(&models.Lease{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.LeaseStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}
