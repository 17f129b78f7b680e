package models

// Property lifecycle statuses. A property is created in draft, submitted by
// its owner, reviewed by an admin, and finally enlisted with the external
// booking provider. Properties are never deleted, only status-transitioned.
const (
	PropertyStatusDraft                   = "draft"
	PropertyStatusPendingApproval         = "pending_approval"
	PropertyStatusApprovedPendingProvider = "approved_pending_provider"
	PropertyStatusActive                  = "active"
	PropertyStatusRejected                = "rejected"
)

// Provider sync statuses for the enlistment step.
const (
	SyncStatusNone    = ""
	SyncStatusSyncing = "syncing"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// propertyTransitions is the single transition table both the approval and
// enlistment operations consult. Anything not listed here is rejected.
var propertyTransitions = map[string][]string{
	PropertyStatusDraft:                   {PropertyStatusPendingApproval},
	PropertyStatusPendingApproval:         {PropertyStatusApprovedPendingProvider, PropertyStatusRejected},
	PropertyStatusApprovedPendingProvider: {PropertyStatusActive},
}

// CanTransitionProperty reports whether moving a property from one status to
// another is allowed.
func CanTransitionProperty(from, to string) bool {
	for _, next := range propertyTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsPostEnlistment reports whether a status means the property has been
// registered with the external booking provider.
func IsPostEnlistment(status string) bool {
	return status == PropertyStatusActive
}

// IsValidPropertyStatus reports whether s is a known lifecycle status.
func IsValidPropertyStatus(s string) bool {
	switch s {
	case PropertyStatusDraft, PropertyStatusPendingApproval,
		PropertyStatusApprovedPendingProvider, PropertyStatusActive,
		PropertyStatusRejected:
		return true
	}
	return false
}
