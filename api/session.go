package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/backend"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/rs/zerolog/log"
)

type loginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

//	@Summary		Sign in
//	@Description	Signs in against the backend and makes the returned profile the current session.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginUserRequest	true	"Credentials"
//	@Success		200		{object}	object				"Signed-in profile"
//	@Failure		400		{object}	object				"Invalid request body"
//	@Failure		401		{object}	object				"Invalid credentials"
//	@Router			/auth/login [post]
func (server *Server) loginUser(ctx *gin.Context) {
	req := new(loginUserRequest)

	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	profile, err := server.authenticator.Login(ctx, backend.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Err(err).Str("email", req.Email).Msg("failed to sign in")
		ctx.JSON(statusFor(err), errorResponse(err))
		return
	}

	if err = server.sessions.SetFromBackend(ctx, profile); err != nil {
		// The session is already in memory; only persisting failed.
		log.Err(err).Str("user_id", profile.ID).Msg("failed to persist session")
	}

	ctx.JSON(http.StatusOK, profile)
}

//	@Summary		Get the current session
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	object	"Current profile"
//	@Failure		401	{object}	object	"No user signed in"
//	@Router			/session [get]
func (server *Server) getSession(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, currentProfile(ctx))
}

//	@Summary		Replace the current session
//	@Description	Accepts a flat profile or the legacy {user, message, token} sign-in response.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object	"Stored profile"
//	@Failure		400	{object}	object	"Invalid profile"
//	@Router			/session [put]
func (server *Server) replaceSession(ctx *gin.Context) {
	data, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	profile, _, err := session.ParseProfile(data)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if profile.ID == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse(errors.New("profile id is required")))
		return
	}

	if err = server.sessions.SetFromBackend(ctx, profile); err != nil {
		log.Err(err).Str("user_id", profile.ID).Msg("failed to persist session")
	}

	ctx.JSON(http.StatusOK, server.sessions.Get())
}

//	@Summary		Sign out
//	@Tags			session
//	@Success		204
//	@Router			/session [delete]
func (server *Server) clearSession(ctx *gin.Context) {
	if err := server.sessions.Clear(ctx); err != nil {
		log.Err(err).Msg("failed to remove persisted session")
	}

	ctx.Status(http.StatusNoContent)
}
