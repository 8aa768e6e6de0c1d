package bloodrequest

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusNotAvailable Status = "not_available"
)

type ConfirmationStatus string

const (
	ConfirmationUnconfirmed ConfirmationStatus = "unconfirmed"
	ConfirmationConfirmed   ConfirmationStatus = "confirmed"
	ConfirmationRejected    ConfirmationStatus = "rejected"
	ConfirmationReceived    ConfirmationStatus = "received"
)

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

// Requester is the user who submitted a request.
type Requester struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName,omitempty"`
}

// BloodRequest is a doctor-submitted request as listed by the backend.
type BloodRequest struct {
	ID                 string             `json:"id"`
	PatientName        string             `json:"patientName"`
	BloodType          string             `json:"bloodType"`
	UnitsRequired      int                `json:"unitsRequired"`
	WardNumber         string             `json:"wardNumber"`
	UrgencyLevel       Urgency            `json:"urgencyLevel,omitempty"`
	Status             Status             `json:"status"`
	ConfirmationStatus ConfirmationStatus `json:"confirmationStatus"`
	User               *Requester         `json:"user,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
}

func (r *BloodRequest) UnmarshalJSON(data []byte) error {
	type alias BloodRequest
	var raw struct {
		alias
		MongoID string          `json:"_id"`
		User    json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = BloodRequest(raw.alias)
	if r.ID == "" {
		r.ID = raw.MongoID
	}
	r.User = decodeRequester(raw.User)
	return nil
}

// decodeRequester accepts a populated user object or a bare id string.
func decodeRequester(raw json.RawMessage) *Requester {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return &Requester{ID: id}
	}
	var u struct {
		MongoID  string `json:"_id"`
		ID       string `json:"id"`
		FullName string `json:"fullName"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	if u.MongoID == "" {
		u.MongoID = u.ID
	}
	return &Requester{ID: u.MongoID, FullName: u.FullName}
}

// Patch is a partial request update. Nil fields are left untouched when
// applied.
type Patch struct {
	ID                 string              `json:"id"`
	PatientName        *string             `json:"patientName,omitempty"`
	BloodType          *string             `json:"bloodType,omitempty"`
	UnitsRequired      *int                `json:"unitsRequired,omitempty"`
	WardNumber         *string             `json:"wardNumber,omitempty"`
	UrgencyLevel       *Urgency            `json:"urgencyLevel,omitempty"`
	Status             *Status             `json:"status,omitempty"`
	ConfirmationStatus *ConfirmationStatus `json:"confirmationStatus,omitempty"`
}

func (p *Patch) UnmarshalJSON(data []byte) error {
	type alias Patch
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Patch(raw.alias)
	if p.ID == "" {
		p.ID = raw.MongoID
	}
	return nil
}

// Apply shallow-merges p into r.
func (p Patch) Apply(r *BloodRequest) {
	if p.PatientName != nil {
		r.PatientName = *p.PatientName
	}
	if p.BloodType != nil {
		r.BloodType = *p.BloodType
	}
	if p.UnitsRequired != nil {
		r.UnitsRequired = *p.UnitsRequired
	}
	if p.WardNumber != nil {
		r.WardNumber = *p.WardNumber
	}
	if p.UrgencyLevel != nil {
		r.UrgencyLevel = *p.UrgencyLevel
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ConfirmationStatus != nil {
		r.ConfirmationStatus = *p.ConfirmationStatus
	}
}

// Updated is published on the requestUpdated channel whenever a view
// changes a request's status or confirmation.
type Updated struct {
	UpdatedRequest Patch `json:"updatedRequest"`
}

