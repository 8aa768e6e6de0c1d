package notification

import (
	"slices"

	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/katatrina/blood-notify/internal/session"
)

// FilterForRole returns the notifications a role is shown, in their
// original order. The input is never modified.
//
// Doctors only see resolved outcomes of their own requests. Donors see
// reminders, general announcements and blood-request notices. Admins and
// unknown roles see everything.
func FilterForRole(role session.Role, list []Notification) []Notification {
	var keep func(Notification) bool
	switch role {
	case session.RoleDoctor:
		keep = resolvedRequestOutcome
	case session.RoleUser:
		keep = func(n Notification) bool {
			switch n.Type {
			case TypeDonationReminder, TypeGeneral, TypeBloodRequest:
				return true
			}
			return false
		}
	default:
		return slices.Clone(list)
	}

	filtered := make([]Notification, 0, len(list))
	for _, n := range list {
		if keep(n) {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

func resolvedRequestOutcome(n Notification) bool {
	if n.Type != TypeBloodRequest || n.RelatedRequest == nil {
		return false
	}
	switch n.RelatedRequest.Status {
	case bloodrequest.StatusApproved, bloodrequest.StatusRejected, bloodrequest.StatusNotAvailable:
		return true
	}
	return false
}
