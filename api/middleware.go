package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/session"
)

const profileKey = "profile"

// requireSession rejects requests made while nobody is signed in and stores
// the current profile on the context.
func requireSession(sessions Sessions) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		profile := sessions.Get()
		if profile == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(ErrNotSignedIn))
			return
		}

		ctx.Set(profileKey, profile)
		ctx.Next()
	}
}

func currentProfile(ctx *gin.Context) *session.UserProfile {
	return ctx.MustGet(profileKey).(*session.UserProfile)
}
