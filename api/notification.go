package api

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/notification"
	"github.com/rs/zerolog/log"
)

type listNotificationsResponse struct {
	Header        string                 `json:"header"`
	Badge         string                 `json:"badge"`
	Unread        int                    `json:"unread"`
	Open          bool                   `json:"open"`
	Notifications []notification.Summary `json:"notifications"`
}

//	@Summary		List notifications
//	@Description	Returns the cached notifications of the current user, filtered and rendered for their role.
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	listNotificationsResponse
//	@Failure		401	{object}	object	"No user signed in"
//	@Router			/notifications [get]
func (server *Server) listNotifications(ctx *gin.Context) {
	profile := currentProfile(ctx)
	snapshot := server.notifications.Snapshot()
	if snapshot.UserID != profile.ID {
		log.Debug().
			Str("user_id", profile.ID).
			Str("cached_user_id", snapshot.UserID).
			Msg("notification cache belongs to another user, listing nothing")
		snapshot = notification.Snapshot{Open: snapshot.Open}
	}

	resp := listNotificationsResponse{
		Header:        notification.HeaderTitle(profile.Role),
		Badge:         notification.BadgeText(snapshot.Unread),
		Unread:        snapshot.Unread,
		Open:          snapshot.Open,
		Notifications: notification.RenderAll(profile.Role, snapshot.Notifications, time.Now()),
	}
	ctx.JSON(http.StatusOK, resp)
}

type notificationStatusResponse struct {
	State          notification.State `json:"state"`
	UserID         string             `json:"userId,omitempty"`
	Unread         int                `json:"unread"`
	Total          int                `json:"total"`
	Open           bool               `json:"open"`
	LastSynced     *time.Time         `json:"lastSynced,omitempty"`
	LastSyncedText string             `json:"lastSyncedText"`
}

//	@Summary		Synchronizer status
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	notificationStatusResponse
//	@Router			/notifications/status [get]
func (server *Server) getNotificationStatus(ctx *gin.Context) {
	snapshot := server.notifications.Snapshot()

	resp := notificationStatusResponse{
		State:          snapshot.State,
		UserID:         snapshot.UserID,
		Unread:         snapshot.Unread,
		Total:          len(snapshot.Notifications),
		Open:           snapshot.Open,
		LastSyncedText: "never",
	}
	if !snapshot.LastSynced.IsZero() {
		lastSynced := snapshot.LastSynced
		resp.LastSynced = &lastSynced
		resp.LastSyncedText = humanize.Time(lastSynced)
	}
	ctx.JSON(http.StatusOK, resp)
}

// panelResponse reports the panel after an action. Error carries a failed
// backend call; the local change is applied regardless.
type panelResponse struct {
	Open   bool   `json:"open"`
	Unread int    `json:"unread"`
	Error  string `json:"error,omitempty"`
}

//	@Summary		Open the notification panel
//	@Description	Opening marks every unread notification as read. Failed backend calls are reported in error while the local state still changes.
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	panelResponse
//	@Router			/notifications/open [post]
func (server *Server) openNotificationPanel(ctx *gin.Context) {
	err := server.notifications.Open(ctx)
	if err != nil {
		log.Err(err).Msg("failed to mark some notifications as read")
	}

	server.respondPanel(ctx, err)
}

//	@Summary		Close the notification panel
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	panelResponse
//	@Router			/notifications/close [post]
func (server *Server) closeNotificationPanel(ctx *gin.Context) {
	server.notifications.ClosePanel()
	server.respondPanel(ctx, nil)
}

//	@Summary		Toggle the notification panel
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	panelResponse
//	@Router			/notifications/toggle [post]
func (server *Server) toggleNotificationPanel(ctx *gin.Context) {
	_, err := server.notifications.Toggle(ctx)
	if err != nil {
		log.Err(err).Msg("failed to mark some notifications as read")
	}

	server.respondPanel(ctx, err)
}

func (server *Server) respondPanel(ctx *gin.Context, err error) {
	snapshot := server.notifications.Snapshot()
	resp := panelResponse{Open: snapshot.Open, Unread: snapshot.Unread}
	if err != nil {
		resp.Error = err.Error()
	}
	ctx.JSON(http.StatusOK, resp)
}

//	@Summary		Refresh notifications now
//	@Tags			notifications
//	@Success		202
//	@Failure		401	{object}	object	"No user signed in"
//	@Router			/notifications/refresh [post]
func (server *Server) refreshNotifications(ctx *gin.Context) {
	if err := server.notifications.Refresh(); err != nil {
		ctx.JSON(statusFor(err), errorResponse(err))
		return
	}

	ctx.Status(http.StatusAccepted)
}

//	@Summary		Clear all notifications
//	@Description	Deletes every cached notification on the backend and empties the cache, even when some deletes fail.
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	panelResponse
//	@Router			/notifications [delete]
func (server *Server) clearNotifications(ctx *gin.Context) {
	err := server.notifications.ClearAll(ctx)
	if err != nil {
		log.Err(err).Msg("failed to delete some notifications")
	}

	server.respondPanel(ctx, err)
}
