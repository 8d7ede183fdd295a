package history

import (
	"encoding/json"

	"rental-portal/internal/models"

	"gorm.io/gorm"
)

// Service writes and reads the lease audit trail. Entries are append-only;
// repeated identical transitions still produce new rows so the trail stays
// complete rather than deduplicated.
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Entry describes one history row to append.
type Entry struct {
	FromStatus models.LeaseStatus
	ToStatus   models.LeaseStatus
	ActorID    uint
	ActorRole  string
	Note       string
	Metadata   map[string]interface{}
}

// Append records a change against the lease, snapshotting its monetary
// state. When tx is nil the service's own connection is used.
func (s *Service) Append(tx *gorm.DB, lease *models.Lease, e Entry) error {
	if tx == nil {
		tx = s.db
	}

	meta := ""
	if len(e.Metadata) > 0 {
		if b, err := json.Marshal(e.Metadata); err == nil {
			meta = string(b)
		}
	}

	row := models.LeaseHistory{
		LeaseID:    lease.ID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		ActorID:    e.ActorID,
		ActorRole:  e.ActorRole,
		Note:       e.Note,
		RentAmount: lease.RentAmount,
		Balance:    lease.Balance,
		Metadata:   meta,
	}
	return tx.Create(&row).Error
}

// ForLease returns a lease's history, newest first.
func (s *Service) ForLease(leaseID uint, limit int) ([]models.LeaseHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.LeaseHistory
	err := s.db.Where("lease_id = ?", leaseID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// RecentChanges returns the most recent history entries across all leases.
func (s *Service) RecentChanges(limit int) ([]models.LeaseHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.LeaseHistory
	err := s.db.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
