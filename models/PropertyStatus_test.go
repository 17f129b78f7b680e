package models

import "testing"

func TestCanTransitionProperty(t *testing.T) {
	allowed := [][2]string{
		{PropertyStatusDraft, PropertyStatusPendingApproval},
		{PropertyStatusPendingApproval, PropertyStatusApprovedPendingProvider},
		{PropertyStatusPendingApproval, PropertyStatusRejected},
		{PropertyStatusApprovedPendingProvider, PropertyStatusActive},
	}
	statuses := []string{
		PropertyStatusDraft,
		PropertyStatusPendingApproval,
		PropertyStatusApprovedPendingProvider,
		PropertyStatusActive,
		PropertyStatusRejected,
	}

	isAllowed := func(from, to string) bool {
		for _, pair := range allowed {
			if pair[0] == from && pair[1] == to {
				return true
			}
		}
		return false
	}

	for _, from := range statuses {
		for _, to := range statuses {
			if got, want := CanTransitionProperty(from, to), isAllowed(from, to); got != want {
				t.Errorf("CanTransitionProperty(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	// Terminal states allow nothing, unknown statuses allow nothing.
	if CanTransitionProperty(PropertyStatusActive, PropertyStatusDraft) {
		t.Error("active must be terminal")
	}
	if CanTransitionProperty("bogus", PropertyStatusActive) {
		t.Error("unknown status must not transition")
	}
}

func TestIsPostEnlistment(t *testing.T) {
	if !IsPostEnlistment(PropertyStatusActive) {
		t.Error("active is post-enlistment")
	}
	for _, s := range []string{PropertyStatusDraft, PropertyStatusPendingApproval, PropertyStatusApprovedPendingProvider, PropertyStatusRejected} {
		if IsPostEnlistment(s) {
			t.Errorf("%s is not post-enlistment", s)
		}
	}
}

func TestIsValidPropertyStatus(t *testing.T) {
	for _, s := range []string{PropertyStatusDraft, PropertyStatusPendingApproval, PropertyStatusApprovedPendingProvider, PropertyStatusActive, PropertyStatusRejected} {
		if !IsValidPropertyStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if IsValidPropertyStatus("archived") {
		t.Error("archived is not a lifecycle status")
	}
}
