package notification

import (
	"fmt"
	"strconv"
	"time"

	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/katatrina/blood-notify/internal/session"
)

type HeaderIcon string

const (
	IconBlood HeaderIcon = "blood"
	IconBell  HeaderIcon = "bell"
)

type DetailLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary is a render-agnostic view of one notification.
type Summary struct {
	ID             string               `json:"id"`
	HeaderIcon     HeaderIcon           `json:"headerIcon"`
	Title          string               `json:"title"`
	TimeAgo        string               `json:"timeAgo"`
	BloodTypeBadge string               `json:"bloodTypeBadge,omitempty"`
	BodyText       string               `json:"bodyText"`
	DetailLines    []DetailLine         `json:"detailLines"`
	Urgency        bloodrequest.Urgency `json:"urgency,omitempty"`
	Unread         bool                 `json:"unread"`
}

// Render shapes n for the given role. It reports false when the role has
// nothing to show for n: doctors only get cards backed by a request.
func Render(n Notification, role session.Role, now time.Time) (Summary, bool) {
	summary := Summary{
		ID:          n.ID,
		TimeAgo:     TimeAgo(n.CreatedAt, now),
		Urgency:     n.Urgency,
		Unread:      n.Unread(),
		DetailLines: []DetailLine{},
	}

	request := n.RelatedRequest
	if role == session.RoleDoctor {
		if request == nil {
			return Summary{}, false
		}
		summary.HeaderIcon = IconBlood
		summary.Title = "Patient: " + request.PatientName
		summary.BloodTypeBadge = request.BloodType
		summary.BodyText = statusMessage(request.Status)
		return summary, true
	}

	summary.HeaderIcon = IconBell
	if n.Type == TypeBloodRequest {
		summary.HeaderIcon = IconBlood
	}
	summary.BodyText = n.Message

	switch {
	case request != nil && request.PatientName != "":
		summary.Title = request.PatientName
	case n.User.FullName != "":
		summary.Title = n.User.FullName
	default:
		summary.Title = "Unknown"
	}

	if request != nil {
		summary.BloodTypeBadge = request.BloodType
		summary.DetailLines = []DetailLine{
			{Label: "Units", Value: strconv.Itoa(request.UnitsRequired)},
			{Label: "Ward", Value: request.WardNumber},
			{Label: "Status", Value: string(request.Status)},
			{Label: "Confirmation", Value: string(request.ConfirmationStatus)},
		}
	}
	return summary, true
}

// RenderAll filters list for role and renders what remains.
func RenderAll(role session.Role, list []Notification, now time.Time) []Summary {
	filtered := FilterForRole(role, list)
	summaries := make([]Summary, 0, len(filtered))
	for _, n := range filtered {
		if s, ok := Render(n, role, now); ok {
			summaries = append(summaries, s)
		}
	}
	return summaries
}

func statusMessage(status bloodrequest.Status) string {
	switch status {
	case bloodrequest.StatusApproved:
		return "Request Approved"
	case bloodrequest.StatusRejected:
		return "Request Rejected"
	case bloodrequest.StatusNotAvailable:
		return "Blood Not Available"
	default:
		return "Status Updated"
	}
}

// TimeAgo buckets the whole minutes elapsed between createdAt and now.
func TimeAgo(createdAt, now time.Time) string {
	minutes := int64(now.Sub(createdAt) / time.Minute)
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/1440)
	}
}

// HeaderTitle is the panel heading for role.
func HeaderTitle(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return "Blood Requests"
	case session.RoleDoctor:
		return "Request Status Updates"
	default:
		return "Notifications"
	}
}

// BadgeText is the bell badge label, empty when nothing is unread.
func BadgeText(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > 99:
		return "99+"
	default:
		return strconv.Itoa(unread)
	}
}
