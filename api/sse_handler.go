package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/notification"
	"github.com/katatrina/blood-notify/internal/push"
	"github.com/rs/zerolog/log"
)

//	@Summary		Stream client events via Server-Sent Events
//	@Description	Streams notifications_synced and foreground_notification events for the signed-in user and request_updated events for every view.
//	@Tags			stream
//	@Produce		text/event-stream
//	@Success		200	{string}	string	"Event stream. Data will be sent as SSE events with format: 'event: {eventType}\ndata: {jsonData}'"
//	@Failure		401	{object}	object	"No user signed in"
//	@Router			/stream [get]
func (server *Server) streamEvents(c *gin.Context) {
	profile := currentProfile(c)

	// SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	clientChan := make(chan event.Event, server.config.EventBufferSize)
	server.eventSender.Register(clientChan, event.UserTopic(profile.ID), event.TopicRequests)
	defer server.eventSender.Unregister(clientChan)

	for {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return
			}
			data, _ := json.Marshal(event.Data)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, data)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

type notificationsSyncedEvent struct {
	Unread int       `json:"unread"`
	Badge  string    `json:"badge"`
	Total  int       `json:"total"`
	At     time.Time `json:"at"`
}

// ForwardEvents relays in-process bus traffic to stream clients. The
// returned func detaches every relay.
func (server *Server) ForwardEvents(synced *event.Bus[notification.Synced], updates *event.Bus[bloodrequest.Updated], foreground *event.Bus[push.Foreground]) (stop func()) {
	subs := []*event.Subscription{
		synced.Subscribe(func(s notification.Synced) {
			server.eventSender.Broadcast(event.Event{
				Topic: event.UserTopic(s.UserID),
				Type:  event.EventTypeNotificationsSynced,
				Data: notificationsSyncedEvent{
					Unread: s.Unread,
					Badge:  notification.BadgeText(s.Unread),
					Total:  len(s.Notifications),
					At:     s.At,
				},
			})
		}),
		updates.Subscribe(func(u bloodrequest.Updated) {
			server.eventSender.Broadcast(event.Event{
				Topic: event.TopicRequests,
				Type:  event.EventTypeRequestUpdated,
				Data:  u,
			})
		}),
		foreground.Subscribe(func(f push.Foreground) {
			profile := server.sessions.Get()
			if profile == nil {
				log.Debug().Str("title", f.Notification.Title).Msg("foreground notification dropped, nobody signed in")
				return
			}
			server.eventSender.Broadcast(event.Event{
				Topic: event.UserTopic(profile.ID),
				Type:  event.EventTypeForegroundNotification,
				Data:  f,
			})
		}),
	}

	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}
