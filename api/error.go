package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/backend"
	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/katatrina/blood-notify/internal/notification"
	"github.com/katatrina/blood-notify/internal/push"
)

var (
	ErrInternalServer = errors.New("internal server error")
	ErrNotSignedIn    = errors.New("no user signed in")
)

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// statusFor maps domain errors to HTTP status codes. Backend errors keep
// the backend's 4xx status; anything else from the backend is a bad gateway.
func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, ErrNotSignedIn),
		errors.Is(err, notification.ErrNoUser),
		errors.Is(err, bloodrequest.ErrNoUser),
		errors.Is(err, push.ErrNoUser):
		return http.StatusUnauthorized
	case errors.Is(err, bloodrequest.ErrForbidden),
		errors.Is(err, push.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInternalServer):
		return http.StatusInternalServerError
	case errors.Is(err, push.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
