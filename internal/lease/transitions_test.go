package lease

import (
	"testing"

	"rental-portal/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.LeaseStatus
		want     bool
	}{
		{models.LeaseStatusDraft, models.LeaseStatusActive, true},
		{models.LeaseStatusDraft, models.LeaseStatusPendingApproval, true},
		{models.LeaseStatusPendingApproval, models.LeaseStatusDraft, true},
		{models.LeaseStatusActive, models.LeaseStatusRenewalPending, true},
		{models.LeaseStatusActive, models.LeaseStatusHoldover, true},
		{models.LeaseStatusRenewalPending, models.LeaseStatusActive, true},
		{models.LeaseStatusNoticeGiven, models.LeaseStatusTerminating, true},
		{models.LeaseStatusTerminating, models.LeaseStatusTerminated, true},
		{models.LeaseStatusTerminated, models.LeaseStatusClosed, true},
		{models.LeaseStatusHoldover, models.LeaseStatusActive, true},

		{models.LeaseStatusActive, models.LeaseStatusClosed, false},
		{models.LeaseStatusActive, models.LeaseStatusDraft, false},
		{models.LeaseStatusDraft, models.LeaseStatusTerminated, false},
		{models.LeaseStatusTerminated, models.LeaseStatusActive, false},
		{models.LeaseStatusClosed, models.LeaseStatusActive, false},
		{models.LeaseStatusClosed, models.LeaseStatusTerminated, false},
		{models.LeaseStatusTerminating, models.LeaseStatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSameStatusAlwaysAllowed(t *testing.T) {
	statuses := []models.LeaseStatus{
		models.LeaseStatusDraft,
		models.LeaseStatusPendingApproval,
		models.LeaseStatusActive,
		models.LeaseStatusRenewalPending,
		models.LeaseStatusNoticeGiven,
		models.LeaseStatusTerminating,
		models.LeaseStatusTerminated,
		models.LeaseStatusHoldover,
		models.LeaseStatusClosed,
	}
	for _, s := range statuses {
		if !CanTransition(s, s) {
			t.Errorf("CanTransition(%s, %s) = false, want true", s, s)
		}
	}
}
