package lease

import "rental-portal/internal/models"

// allowedTransitions is the closed transition table for lease status.
// Anything outside it is rejected with an invalid-state error instead of
// being written ad hoc.
var allowedTransitions = map[models.LeaseStatus][]models.LeaseStatus{
	models.LeaseStatusDraft: {
		models.LeaseStatusPendingApproval,
		models.LeaseStatusActive,
		models.LeaseStatusClosed,
	},
	models.LeaseStatusPendingApproval: {
		models.LeaseStatusDraft,
		models.LeaseStatusActive,
		models.LeaseStatusClosed,
	},
	models.LeaseStatusActive: {
		models.LeaseStatusRenewalPending,
		models.LeaseStatusNoticeGiven,
		models.LeaseStatusTerminating,
		models.LeaseStatusHoldover,
	},
	models.LeaseStatusRenewalPending: {
		models.LeaseStatusActive,
		models.LeaseStatusNoticeGiven,
		models.LeaseStatusHoldover,
	},
	models.LeaseStatusNoticeGiven: {
		models.LeaseStatusActive,
		models.LeaseStatusTerminating,
		models.LeaseStatusTerminated,
	},
	models.LeaseStatusTerminating: {
		models.LeaseStatusTerminated,
	},
	models.LeaseStatusHoldover: {
		models.LeaseStatusActive,
		models.LeaseStatusRenewalPending,
		models.LeaseStatusNoticeGiven,
		models.LeaseStatusTerminating,
	},
	models.LeaseStatusTerminated: {
		models.LeaseStatusClosed,
	},
	// closed is final
	models.LeaseStatusClosed: {},
}

// CanTransition reports whether the status change is in the table. A
// same-status write is always permitted so repeated operations still land
// in the audit trail.
func CanTransition(from, to models.LeaseStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
