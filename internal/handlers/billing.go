package handlers

import (
	"net/http"

	"rental-portal/internal/billing"
	"rental-portal/internal/database"
	"rental-portal/internal/models"
	"rental-portal/internal/scheduler"
	"rental-portal/internal/screening"

	"github.com/gin-gonic/gin"
)

// BillingHandler handles schedule, autopay and billing-run requests
type BillingHandler struct {
	store     *database.DB
	schedules *billing.ScheduleService
	assessor  *billing.Assessor
	autopay   *billing.Processor
	scheduler *scheduler.Scheduler
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(store *database.DB, schedules *billing.ScheduleService, assessor *billing.Assessor, autopay *billing.Processor, sched *scheduler.Scheduler) *BillingHandler {
	return &BillingHandler{
		store:     store,
		schedules: schedules,
		assessor:  assessor,
		autopay:   autopay,
		scheduler: sched,
	}
}

type upsertScheduleRequest struct {
	Amount           float64  `json:"amount" binding:"required"`
	Description      string   `json:"description"`
	Frequency        string   `json:"frequency" binding:"required"`
	DayOfMonth       *int     `json:"day_of_month"`
	DayOfWeek        *int     `json:"day_of_week"`
	LateFeeAmount    *float64 `json:"late_fee_amount"`
	LateFeeAfterDays *int     `json:"late_fee_after_days"`
}

// UpsertSchedule creates or replaces a lease's recurring invoice schedule.
func (h *BillingHandler) UpsertSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req upsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.store.GetLease(id)
	if err != nil {
		respondError(c, err)
		return
	}

	sched, err := h.schedules.UpsertSchedule(l, billing.ScheduleParams{
		Amount:           req.Amount,
		Description:      req.Description,
		Frequency:        models.ScheduleFrequency(req.Frequency),
		DayOfMonth:       req.DayOfMonth,
		DayOfWeek:        req.DayOfWeek,
		LateFeeAmount:    req.LateFeeAmount,
		LateFeeAfterDays: req.LateFeeAfterDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// DeactivateSchedule switches a lease's schedule off.
func (h *BillingHandler) DeactivateSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.schedules.DeactivateSchedule(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease_id": id, "active": false})
}

type configureAutopayRequest struct {
	PaymentMethodID uint     `json:"payment_method_id" binding:"required"`
	MaxAmount       *float64 `json:"max_amount"`
}

// ConfigureAutopay enrolls a lease in autopay.
func (h *BillingHandler) ConfigureAutopay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req configureAutopayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, actorRole := actorFrom(c)
	enr, err := h.autopay.ConfigureAutopay(id, req.PaymentMethodID, req.MaxAmount, actorID, actorRole)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enr)
}

// DisableAutopay switches a lease's autopay enrollment off.
func (h *BillingHandler) DisableAutopay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actorID, actorRole := actorFrom(c)
	if err := h.autopay.DisableAutopay(id, actorID, actorRole); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease_id": id, "active": false})
}

// TriggerRun starts a manual billing run in the background, for
// operational recovery when the daily trigger was missed.
func (h *BillingHandler) TriggerRun(c *gin.Context) {
	go h.scheduler.RunNow()
	c.JSON(http.StatusAccepted, gin.H{
		"message": "billing run started in background",
		"status":  "running",
	})
}

// WaiveLateFee waives an invoice's active late fee.
func (h *BillingHandler) WaiveLateFee(c *gin.Context) {
	id, ok := pathID(c, "invoiceId")
	if !ok {
		return
	}
	if err := h.assessor.WaiveLateFee(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice_id": id, "waived": true})
}

// ScreenApplicant evaluates a rental application against a rent figure.
// Stateless; nothing is stored.
func (h *BillingHandler) ScreenApplicant(c *gin.Context) {
	var app screening.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, screening.Score(app))
}
