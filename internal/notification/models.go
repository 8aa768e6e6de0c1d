package notification

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/katatrina/blood-notify/internal/bloodrequest"
)

type Type string

const (
	TypeBloodRequest     Type = "blood-request"
	TypeDonationReminder Type = "donation_reminder"
	TypeGeneral          Type = "general"
)

// IsRequestUpdate reports whether t is one of the request_* lifecycle types.
func (t Type) IsRequestUpdate() bool {
	return strings.HasPrefix(string(t), "request_")
}

type ReadStatus string

const (
	StatusUnread ReadStatus = "unread"
	StatusRead   ReadStatus = "read"
)

// Recipient is the user a notification belongs to.
type Recipient struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
}

// BloodRequestSummary is the read-only request snapshot embedded in a
// notification.
type BloodRequestSummary struct {
	PatientName        string                          `json:"patientName"`
	BloodType          string                          `json:"bloodType"`
	UnitsRequired      int                             `json:"unitsRequired"`
	WardNumber         string                          `json:"wardNumber"`
	Status             bloodrequest.Status             `json:"status"`
	ConfirmationStatus bloodrequest.ConfirmationStatus `json:"confirmationStatus"`
}

type Notification struct {
	ID             string               `json:"id"`
	Type           Type                 `json:"type"`
	Status         ReadStatus           `json:"status"`
	IsRead         bool                 `json:"isRead"`
	CreatedAt      time.Time            `json:"createdAt"`
	Message        string               `json:"message"`
	User           Recipient            `json:"user"`
	RelatedRequest *BloodRequestSummary `json:"relatedRequest,omitempty"`
	Urgency        bloodrequest.Urgency `json:"urgency,omitempty"`
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	type alias Notification
	var raw struct {
		alias
		MongoID string          `json:"_id"`
		User    json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Notification(raw.alias)
	if n.ID == "" {
		n.ID = raw.MongoID
	}
	n.User = decodeRecipient(raw.User)
	return nil
}

// Unread reports whether n still counts towards the unread badge.
func (n Notification) Unread() bool {
	return n.Status != StatusRead
}

// decodeRecipient accepts {id|_id, fullName} or a bare id string.
func decodeRecipient(raw json.RawMessage) Recipient {
	if len(raw) == 0 || string(raw) == "null" {
		return Recipient{}
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return Recipient{ID: id}
	}
	var u struct {
		ID       string `json:"id"`
		MongoID  string `json:"_id"`
		FullName string `json:"fullName"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return Recipient{}
	}
	if u.ID == "" {
		u.ID = u.MongoID
	}
	return Recipient{ID: u.ID, FullName: u.FullName}
}
