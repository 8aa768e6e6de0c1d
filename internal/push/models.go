package push

import "encoding/json"

// Preferences are the per-user push toggles stored by the backend.
type Preferences struct {
	PushNotifications         bool `json:"pushNotifications"`
	BloodRequestNotifications bool `json:"bloodRequestNotifications"`
	CampNotifications         bool `json:"campNotifications"`
	SystemNotifications       bool `json:"systemNotifications"`
}

// DefaultPreferences is what a user has before anything was saved.
func DefaultPreferences() Preferences {
	return Preferences{
		PushNotifications:         true,
		BloodRequestNotifications: true,
		CampNotifications:         true,
		SystemNotifications:       true,
	}
}

// PreferencesPatch is a partial preferences update. Nil fields are not sent
// and are left untouched when applied.
type PreferencesPatch struct {
	PushNotifications         *bool `json:"pushNotifications,omitempty"`
	BloodRequestNotifications *bool `json:"bloodRequestNotifications,omitempty"`
	CampNotifications         *bool `json:"campNotifications,omitempty"`
	SystemNotifications       *bool `json:"systemNotifications,omitempty"`
}

func (p PreferencesPatch) Empty() bool {
	return p.PushNotifications == nil &&
		p.BloodRequestNotifications == nil &&
		p.CampNotifications == nil &&
		p.SystemNotifications == nil
}

// Apply shallow-merges p into prefs.
func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	if p.PushNotifications != nil {
		prefs.PushNotifications = *p.PushNotifications
	}
	if p.BloodRequestNotifications != nil {
		prefs.BloodRequestNotifications = *p.BloodRequestNotifications
	}
	if p.CampNotifications != nil {
		prefs.CampNotifications = *p.CampNotifications
	}
	if p.SystemNotifications != nil {
		prefs.SystemNotifications = *p.SystemNotifications
	}
	return prefs
}

// DeviceRegistration ties a push token to a user.
type DeviceRegistration struct {
	Token      string `json:"fcmToken"`
	UserID     string `json:"userId"`
	DeviceInfo string `json:"deviceInfo"`
}

// Message is a push received while the client is in the foreground, as
// delivered by the platform.
type Message struct {
	Title string
	Body  string
	Icon  string
	Data  map[string]string
	// Raw is the platform payload, passed through untouched.
	Raw json.RawMessage
}

// ForegroundNotification is the display-ready form of a foreground push.
type ForegroundNotification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon"`
	Data  map[string]string `json:"data"`
}

// Foreground is published for every foreground push.
type Foreground struct {
	Notification ForegroundNotification `json:"notification"`
	Payload      json.RawMessage        `json:"payload,omitempty"`
}

const (
	DefaultTitle = "New Notification"
	DefaultBody  = "You have a new notification"
	DefaultIcon  = "/icon-192x192.png"
)

// NewForeground fills in display defaults for missing fields.
func NewForeground(m Message) Foreground {
	n := ForegroundNotification{
		Title: m.Title,
		Body:  m.Body,
		Icon:  m.Icon,
		Data:  m.Data,
	}
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if n.Body == "" {
		n.Body = DefaultBody
	}
	if n.Icon == "" {
		n.Icon = DefaultIcon
	}
	if n.Data == nil {
		n.Data = map[string]string{}
	}
	return Foreground{Notification: n, Payload: m.Raw}
}
