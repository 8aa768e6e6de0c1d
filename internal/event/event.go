package event

// Event is the envelope pushed to stream clients.
type Event struct {
	Topic string // e.g. "user:42", "requests"
	Type  string // one of the EventType* constants
	Data  interface{}
}

const (
	EventTypeNotificationsSynced    = "notifications_synced"
	EventTypeRequestUpdated         = "request_updated"
	EventTypeForegroundNotification = "foreground_notification"
)

const TopicRequests = "requests"

// UserTopic is the stream topic carrying events scoped to one user.
func UserTopic(userID string) string {
	return "user:" + userID
}

// EventSender fans events out to registered stream clients.
type EventSender interface {
	Register(client chan Event, topics ...string)
	Unregister(client chan Event)
	Broadcast(event Event)
	Run()
	Close()
}
