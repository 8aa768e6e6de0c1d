package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/push"
)

//	@Summary		Push registration state
//	@Tags			push
//	@Produce		json
//	@Success		200	{object}	push.State
//	@Router			/push [get]
func (server *Server) getPushState(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, server.pushBridge.State())
}

//	@Summary		Enable push notifications
//	@Description	Requests permission from the push platform and registers this device with the backend.
//	@Tags			push
//	@Produce		json
//	@Success		200	{object}	push.State
//	@Failure		403	{object}	object	"Permission denied"
//	@Failure		501	{object}	object	"Push is not supported"
//	@Router			/push/permission [post]
func (server *Server) requestPushPermission(ctx *gin.Context) {
	if !server.pushBridge.RequestPermission(ctx) {
		server.respondPushFailure(ctx)
		return
	}

	ctx.JSON(http.StatusOK, server.pushBridge.State())
}

//	@Summary		Update push preferences
//	@Description	Only the fields present in the body are changed.
//	@Tags			push
//	@Accept			json
//	@Produce		json
//	@Param			request	body		push.PreferencesPatch	true	"Preference changes"
//	@Success		200		{object}	push.State
//	@Router			/push/preferences [patch]
func (server *Server) updatePushPreferences(ctx *gin.Context) {
	patch := new(push.PreferencesPatch)
	if err := ctx.ShouldBindJSON(patch); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if patch.Empty() {
		ctx.JSON(http.StatusBadRequest, errorResponse(errors.New("no preference to update")))
		return
	}

	if !server.pushBridge.UpdatePreferences(ctx, *patch) {
		server.respondPushFailure(ctx)
		return
	}

	ctx.JSON(http.StatusOK, server.pushBridge.State())
}

type sendTestPushRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

//	@Summary		Send a test push
//	@Tags			push
//	@Accept			json
//	@Param			request	body	sendTestPushRequest	false	"Title and message"
//	@Success		202
//	@Router			/push/test [post]
func (server *Server) sendTestPush(ctx *gin.Context) {
	req := sendTestPushRequest{
		Title:   "Test Notification",
		Message: "This is a test push notification",
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	if !server.pushBridge.SendTest(ctx, req.Title, req.Message) {
		server.respondPushFailure(ctx)
		return
	}

	ctx.Status(http.StatusAccepted)
}

//	@Summary		Disable push notifications
//	@Description	Removes this device's token from the backend. The token is forgotten locally even when removal fails.
//	@Tags			push
//	@Produce		json
//	@Success		200	{object}	push.State
//	@Router			/push [delete]
func (server *Server) disablePush(ctx *gin.Context) {
	server.pushBridge.DisableNotifications(ctx)
	ctx.JSON(http.StatusOK, server.pushBridge.State())
}

func (server *Server) respondPushFailure(ctx *gin.Context) {
	err := server.pushBridge.Err()
	if err == nil {
		err = ErrInternalServer
	}
	ctx.JSON(statusFor(err), errorResponse(err))
}
