package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/rs/zerolog/log"
)

type listBloodRequestsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=all pending approved rejected not_available"`
	Term   string `form:"q"`
}

//	@Summary		List blood requests
//	@Description	Loads the requests visible to the current user and filters them by status and search term.
//	@Tags			blood-requests
//	@Produce		json
//	@Param			status	query	string	false	"Status filter"	Enums(all, pending, approved, rejected, not_available)
//	@Param			q		query	string	false	"Search term"
//	@Success		200		{array}	bloodrequest.BloodRequest
//	@Failure		401		{object}	object	"No user signed in"
//	@Router			/blood-requests [get]
func (server *Server) listBloodRequests(ctx *gin.Context) {
	query := new(listBloodRequestsQuery)
	if err := ctx.ShouldBindQuery(query); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if err := server.bloodRequests.Load(ctx); err != nil {
		log.Err(err).Msg("failed to load blood requests")
		ctx.JSON(statusFor(err), errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, server.bloodRequests.Filter(query.Status, query.Term))
}

type updateBloodRequestStatusRequest struct {
	Status bloodrequest.Status `json:"status" binding:"required,oneof=pending approved rejected not_available"`
}

//	@Summary		Update the status of a blood request
//	@Description	Admin only. Peer views and the notification synchronizer pick the change up immediately.
//	@Tags			blood-requests
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Request ID"
//	@Param			request	body		updateBloodRequestStatusRequest	true	"New status"
//	@Success		200		{object}	bloodrequest.Patch
//	@Failure		403		{object}	object	"Not an admin"
//	@Router			/blood-requests/{id}/status [patch]
func (server *Server) updateBloodRequestStatus(ctx *gin.Context) {
	req := new(updateBloodRequestStatusRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	patch, err := server.bloodRequests.UpdateStatus(ctx, ctx.Param("id"), req.Status)
	if err != nil {
		log.Err(err).Str("request_id", ctx.Param("id")).Msg("failed to update blood request status")
		ctx.JSON(statusFor(err), errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, patch)
}

type updateBloodRequestConfirmationRequest struct {
	ConfirmationStatus bloodrequest.ConfirmationStatus `json:"confirmationStatus" binding:"required,oneof=unconfirmed confirmed rejected received"`
}

//	@Summary		Update the confirmation of a blood request
//	@Description	Doctor only.
//	@Tags			blood-requests
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Request ID"
//	@Param			request	body		updateBloodRequestConfirmationRequest	true	"New confirmation status"
//	@Success		200		{object}	bloodrequest.Patch
//	@Failure		403		{object}	object	"Not a doctor"
//	@Router			/blood-requests/{id}/confirmation [patch]
func (server *Server) updateBloodRequestConfirmation(ctx *gin.Context) {
	req := new(updateBloodRequestConfirmationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	patch, err := server.bloodRequests.UpdateConfirmation(ctx, ctx.Param("id"), req.ConfirmationStatus)
	if err != nil {
		log.Err(err).Str("request_id", ctx.Param("id")).Msg("failed to update blood request confirmation")
		ctx.JSON(statusFor(err), errorResponse(err))
		return
	}

	ctx.JSON(http.StatusOK, patch)
}
