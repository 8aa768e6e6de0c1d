package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/notification"
	"github.com/katatrina/blood-notify/internal/push"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamEvents_RequiresUser(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(http.MethodGet, "/v1/stream", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestStreamEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "u1", session.RoleUser)

	srv := httptest.NewServer(ts.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	var reg registration
	select {
	case reg = <-ts.sender.registered:
	case <-time.After(2 * time.Second):
		t.Fatal("stream client was never registered")
	}
	assert.ElementsMatch(t, []string{"user:u1", event.TopicRequests}, reg.topics)

	reg.client <- event.Event{
		Topic: "user:u1",
		Type:  event.EventTypeNotificationsSynced,
		Data:  map[string]int{"unread": 3},
	}

	reader := bufio.NewReader(res.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: notifications_synced", strings.TrimSpace(line))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `data: {"unread":3}`, strings.TrimSpace(line))
}

func TestForwardEvents(t *testing.T) {
	ts := newTestServer(t)
	synced := event.NewBus[notification.Synced]("synced")
	updates := event.NewBus[bloodrequest.Updated]("requests")
	foreground := event.NewBus[push.Foreground]("foreground")

	stop := ts.ForwardEvents(synced, updates, foreground)

	// nobody signed in, the foreground push has no topic
	foreground.Publish(push.NewForeground(push.Message{Title: "Hello"}))
	assert.Empty(t, ts.sender.events())

	ts.signIn(t, "u1", session.RoleUser)
	synced.Publish(notification.Synced{UserID: "u1", Unread: 120, Notifications: make([]notification.Notification, 120)})
	status := bloodrequest.StatusApproved
	updates.Publish(bloodrequest.Updated{UpdatedRequest: bloodrequest.Patch{ID: "r1", Status: &status}})
	foreground.Publish(push.NewForeground(push.Message{Title: "Hello"}))

	events := ts.sender.events()
	require.Len(t, events, 3)

	assert.Equal(t, "user:u1", events[0].Topic)
	assert.Equal(t, event.EventTypeNotificationsSynced, events[0].Type)
	data, ok := events[0].Data.(notificationsSyncedEvent)
	require.True(t, ok)
	assert.Equal(t, "99+", data.Badge)
	assert.Equal(t, 120, data.Total)

	assert.Equal(t, event.TopicRequests, events[1].Topic)
	assert.Equal(t, event.EventTypeRequestUpdated, events[1].Type)

	assert.Equal(t, "user:u1", events[2].Topic)
	assert.Equal(t, event.EventTypeForegroundNotification, events[2].Type)
	assert.Equal(t, "Hello", events[2].Data.(push.Foreground).Notification.Title)

	stop()
	synced.Publish(notification.Synced{UserID: "u1"})
	assert.Len(t, ts.sender.events(), 3)
}
