package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// UserProfile is the signed-in user as returned by the backend. Fields the
// client does not interpret are kept in Extra so the persisted blob
// round-trips unchanged.
type UserProfile struct {
	ID          string
	Role        Role
	FullName    string
	Email       string
	BloodType   string
	PhoneNumber string
	Extra       map[string]json.RawMessage
}

var knownProfileFields = []string{"id", "role", "fullName", "email", "bloodType", "phoneNumber"}

func (p *UserProfile) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("profile must be a JSON object")
	}

	p.ID = idValue(fields["id"])
	if p.ID == "" {
		p.ID = idValue(fields["_id"])
	}
	var role string
	decodeString(fields["role"], &role)
	p.Role = Role(role)
	decodeString(fields["fullName"], &p.FullName)
	decodeString(fields["email"], &p.Email)
	decodeString(fields["bloodType"], &p.BloodType)
	decodeString(fields["phoneNumber"], &p.PhoneNumber)

	for _, key := range knownProfileFields {
		delete(fields, key)
	}
	p.Extra = fields
	return nil
}

func (p UserProfile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+len(knownProfileFields))
	for k, v := range p.Extra {
		out[k] = v
	}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("id", p.ID)
	set("role", string(p.Role))
	set("fullName", p.FullName)
	set("email", p.Email)
	set("bloodType", p.BloodType)
	set("phoneNumber", p.PhoneNumber)
	return json.Marshal(out)
}

// Clone returns a copy that shares nothing mutable with p.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Extra = maps.Clone(p.Extra)
	return &c
}

// ParseProfile decodes a persisted or backend-supplied profile. The older
// sign-in response shape {user, message, token} is unwrapped to the flat
// profile; migrated reports whether that happened.
func ParseProfile(data []byte) (profile *UserProfile, migrated bool, err error) {
	var envelope struct {
		User    json.RawMessage `json:"user"`
		Message any             `json:"message"`
		Token   any             `json:"token"`
	}
	if err = json.Unmarshal(data, &envelope); err != nil {
		return nil, false, fmt.Errorf("failed to decode profile: %w", err)
	}

	if isObject(envelope.User) && truthy(envelope.Message) && truthy(envelope.Token) {
		data = envelope.User
		migrated = true
	}

	profile = &UserProfile{}
	if err = json.Unmarshal(data, profile); err != nil {
		return nil, false, fmt.Errorf("failed to decode profile: %w", err)
	}
	return profile, migrated, nil
}

func idValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// numeric ids from locally registered users
	return strings.Trim(string(raw), `"`)
}

func decodeString(raw json.RawMessage, dst *string) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}
