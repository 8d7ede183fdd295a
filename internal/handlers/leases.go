package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rental-portal/internal/database"
	"rental-portal/internal/history"
	"rental-portal/internal/lease"
	"rental-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// LeaseHandler handles lease lifecycle requests
type LeaseHandler struct {
	store      *database.DB
	lifecycle  *lease.Service
	historySvc *history.Service
}

// NewLeaseHandler creates a new lease handler
func NewLeaseHandler(store *database.DB, lifecycle *lease.Service, hist *history.Service) *LeaseHandler {
	return &LeaseHandler{store: store, lifecycle: lifecycle, historySvc: hist}
}

type createLeaseRequest struct {
	TenantID          uint    `json:"tenant_id" binding:"required"`
	UnitID            uint    `json:"unit_id" binding:"required"`
	Status            string  `json:"status"`
	StartDate         string  `json:"start_date" binding:"required"`
	EndDate           string  `json:"end_date" binding:"required"`
	RentAmount        float64 `json:"rent_amount" binding:"required"`
	DepositAmount     float64 `json:"deposit_amount"`
	NoticePeriodDays  int     `json:"notice_period_days"`
	AutoRenew         bool    `json:"auto_renew"`
	AutoRenewLeadDays int     `json:"auto_renew_lead_days"`
	EscalationPercent float64 `json:"escalation_percent"`
}

// Create creates a lease from posted terms.
func (h *LeaseHandler) Create(c *gin.Context) {
	var req createLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be RFC3339"})
		return
	}

	actorID, actorRole := actorFrom(c)
	created, err := h.lifecycle.CreateLease(lease.CreateLeaseParams{
		TenantID:          req.TenantID,
		UnitID:            req.UnitID,
		Status:            models.LeaseStatus(req.Status),
		StartDate:         start,
		EndDate:           end,
		RentAmount:        req.RentAmount,
		DepositAmount:     req.DepositAmount,
		NoticePeriodDays:  req.NoticePeriodDays,
		AutoRenew:         req.AutoRenew,
		AutoRenewLeadDays: req.AutoRenewLeadDays,
		EscalationPercent: req.EscalationPercent,
	}, lease.Actor{ID: actorID, Role: actorRole})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns one lease.
func (h *LeaseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	l, err := h.store.GetLease(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// History returns a lease's audit trail, newest first.
func (h *LeaseHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetLease(id); err != nil {
		respondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.historySvc.ForLease(id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lease_id": id,
		"count":    len(entries),
		"history":  entries,
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateStatus applies an administrative status transition.
func (h *LeaseHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, actorRole := actorFrom(c)
	l, err := h.lifecycle.UpdateLeaseStatus(id, models.LeaseStatus(req.Status),
		lease.Actor{ID: actorID, Role: actorRole}, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

type renewalOfferRequest struct {
	ProposedRent      float64 `json:"proposed_rent" binding:"required"`
	ProposedStart     string  `json:"proposed_start" binding:"required"`
	ProposedEnd       string  `json:"proposed_end" binding:"required"`
	EscalationPercent float64 `json:"escalation_percent"`
	Message           string  `json:"message"`
	ExpiresAt         string  `json:"expires_at"`
}

// CreateRenewalOffer opens renewal negotiation on a lease.
func (h *LeaseHandler) CreateRenewalOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req renewalOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.ProposedStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposed_start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.ProposedEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposed_end must be RFC3339"})
		return
	}
	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at must be RFC3339"})
			return
		}
		expiresAt = &t
	}

	actorID, actorRole := actorFrom(c)
	offer, err := h.lifecycle.CreateRenewalOffer(id, lease.OfferParams{
		ProposedRent:      req.ProposedRent,
		ProposedStart:     start,
		ProposedEnd:       end,
		EscalationPercent: req.EscalationPercent,
		Message:           req.Message,
		ExpiresAt:         expiresAt,
	}, lease.Actor{ID: actorID, Role: actorRole})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

type respondOfferRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// RespondToRenewalOffer resolves an offer on behalf of the tenant.
func (h *LeaseHandler) RespondToRenewalOffer(c *gin.Context) {
	leaseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offerID, ok := pathID(c, "offerId")
	if !ok {
		return
	}
	var req respondOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, _ := actorFrom(c)
	offer, err := h.lifecycle.RespondToRenewalOffer(leaseID, offerID, req.Decision, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

type noticeRequest struct {
	Type           string `json:"type" binding:"required"`
	DeliveryMethod string `json:"delivery_method"`
	Message        string `json:"message"`
	EffectiveAt    string `json:"effective_at"`
}

func (r *noticeRequest) toParams(c *gin.Context) (lease.NoticeParams, bool) {
	p := lease.NoticeParams{
		Type:           models.NoticeType(r.Type),
		DeliveryMethod: r.DeliveryMethod,
		Message:        r.Message,
	}
	if r.EffectiveAt != "" {
		t, err := time.Parse(time.RFC3339, r.EffectiveAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "effective_at must be RFC3339"})
			return p, false
		}
		p.EffectiveAt = &t
	}
	return p, true
}

// SubmitNotice records a tenant-submitted notice.
func (h *LeaseHandler) SubmitNotice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req noticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params, ok := req.toParams(c)
	if !ok {
		return
	}

	actorID, _ := actorFrom(c)
	notice, err := h.lifecycle.SubmitTenantNotice(id, params, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notice)
}

// RecordNotice records a manager-initiated notice.
func (h *LeaseHandler) RecordNotice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req noticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params, ok := req.toParams(c)
	if !ok {
		return
	}

	actorID, _ := actorFrom(c)
	notice, err := h.lifecycle.RecordLeaseNotice(id, params, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notice)
}
