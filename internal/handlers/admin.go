package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rental-portal/internal/cleanup"
	"rental-portal/internal/history"
	"rental-portal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db             *gorm.DB
	historyService *history.Service
	cleanupService *cleanup.Service
	log            *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, historySvc *history.Service, cleanupSvc *cleanup.Service, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		db:             db,
		historyService: historySvc,
		cleanupService: cleanupSvc,
		log:            log,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	// Lease counts by status
	type statusCount struct {
		Status models.LeaseStatus `json:"status"`
		Count  int64              `json:"count"`
	}
	var counts []statusCount
	h.db.Model(&models.Lease{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts)

	leaseStats := make(map[string]interface{})
	var total int64
	for _, sc := range counts {
		leaseStats[string(sc.Status)] = sc.Count
		total += sc.Count
	}
	leaseStats["total"] = total
	stats["leases"] = leaseStats

	// Outstanding invoices
	var unpaidCount int64
	var unpaidTotal float64
	h.db.Model(&models.Invoice{}).Where("status = ?", models.InvoiceStatusUnpaid).Count(&unpaidCount)
	h.db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", models.InvoiceStatusUnpaid).
		Scan(&unpaidTotal)
	stats["invoices"] = map[string]interface{}{
		"unpaid_count": unpaidCount,
		"unpaid_total": unpaidTotal,
	}

	// Active billing schedules and autopay enrollments
	var activeSchedules, activeAutopay int64
	h.db.Model(&models.RecurringInvoiceSchedule{}).Where("active = ?", true).Count(&activeSchedules)
	h.db.Model(&models.AutopayEnrollment{}).Where("active = ?", true).Count(&activeAutopay)
	stats["billing"] = map[string]interface{}{
		"active_schedules":   activeSchedules,
		"autopay_enrollment": activeAutopay,
	}

	// Lifecycle activity (last 7 days)
	last7days := time.Now().AddDate(0, 0, -7)
	var recentChanges int64
	h.db.Model(&models.LeaseHistory{}).Where("created_at >= ?", last7days).Count(&recentChanges)
	stats["changes"] = map[string]interface{}{
		"last_7_days": recentChanges,
	}

	// Delete logs statistics
	deleteStats, err := h.cleanupService.GetDeleteStats()
	if err != nil {
		h.log.Warnf("Failed to get delete stats: %v", err)
	} else {
		stats["deletions"] = deleteStats
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentChanges returns the most recent lease lifecycle events
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	changes, err := h.historyService.RecentChanges(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// RunCleanup executes physical deletion of old closed leases
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int  `json:"retention_days"`     // Days to keep (default: 365)
		MaxDeletionCount int  `json:"max_deletion_count"` // Safety limit (default: 1000)
		DryRun           bool `json:"dry_run"`            // Dry run mode (default: true)
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config := cleanup.DefaultConfig()
	if req.RetentionDays > 0 {
		config.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		config.MaxDeletionCount = req.MaxDeletionCount
	}
	config.DryRun = req.DryRun

	h.log.Infof("Admin: Running cleanup (retention: %d days, max: %d, dry-run: %v)",
		config.RetentionDays, config.MaxDeletionCount, config.DryRun)

	result, err := h.cleanupService.PhysicallyDelete(config)
	if err != nil {
		h.log.Errorf("Admin: Cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.log.Infof("Admin: Cleanup completed: %d/%d deleted (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.DryRun)

	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.cleanupService.GetDeleteLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
