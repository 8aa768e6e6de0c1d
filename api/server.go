package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/katatrina/blood-notify/internal/backend"
	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/notification"
	"github.com/katatrina/blood-notify/internal/push"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/katatrina/blood-notify/internal/util"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Authenticator signs a user in against the backend.
type Authenticator interface {
	Login(ctx context.Context, arg backend.LoginRequest) (*session.UserProfile, error)
}

type Sessions interface {
	Get() *session.UserProfile
	SetFromBackend(ctx context.Context, profile *session.UserProfile) error
	Clear(ctx context.Context) error
}

type Notifications interface {
	Snapshot() notification.Snapshot
	Open(ctx context.Context) error
	ClosePanel()
	Toggle(ctx context.Context) (bool, error)
	Refresh() error
	ClearAll(ctx context.Context) error
}

type BloodRequests interface {
	Load(ctx context.Context) error
	Filter(status, term string) []bloodrequest.BloodRequest
	UpdateStatus(ctx context.Context, id string, status bloodrequest.Status) (bloodrequest.Patch, error)
	UpdateConfirmation(ctx context.Context, id string, confirmation bloodrequest.ConfirmationStatus) (bloodrequest.Patch, error)
}

type PushBridge interface {
	State() push.State
	Err() error
	RequestPermission(ctx context.Context) bool
	UpdatePreferences(ctx context.Context, patch push.PreferencesPatch) bool
	SendTest(ctx context.Context, title, body string) bool
	DisableNotifications(ctx context.Context)
}

type Server struct {
	router        *gin.Engine
	config        *util.Config
	authenticator Authenticator
	sessions      Sessions
	notifications Notifications
	bloodRequests BloodRequests
	pushBridge    PushBridge
	eventSender   event.EventSender
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(config *util.Config, authenticator Authenticator, sessions Sessions, notifications Notifications, bloodRequests BloodRequests, pushBridge PushBridge, eventSender event.EventSender) *Server {
	server := &Server{
		config:        config,
		authenticator: authenticator,
		sessions:      sessions,
		notifications: notifications,
		bloodRequests: bloodRequests,
		pushBridge:    pushBridge,
		eventSender:   eventSender,
	}

	server.setupRouter()
	return server
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Cross-Origin-Opener-Policy", "same-origin same-origin-allow-popups")
		c.Header("Cross-Origin-Embedder-Policy", "unsafe-none")
		c.Next()
	})

	v1 := router.Group("/v1")

	v1.POST("/auth/login", server.loginUser)

	sessionGroup := v1.Group("/session")
	{
		sessionGroup.GET("", requireSession(server.sessions), server.getSession)
		sessionGroup.PUT("", server.replaceSession)
		sessionGroup.DELETE("", server.clearSession)
	}

	notificationGroup := v1.Group("/notifications")
	{
		notificationGroup.GET("", requireSession(server.sessions), server.listNotifications)
		notificationGroup.GET("status", server.getNotificationStatus)
		notificationGroup.POST("open", server.openNotificationPanel)
		notificationGroup.POST("close", server.closeNotificationPanel)
		notificationGroup.POST("toggle", server.toggleNotificationPanel)
		notificationGroup.POST("refresh", server.refreshNotifications)
		notificationGroup.DELETE("", server.clearNotifications)
	}

	bloodRequestGroup := v1.Group("/blood-requests")
	{
		bloodRequestGroup.GET("", server.listBloodRequests)
		bloodRequestGroup.PATCH(":id/status", server.updateBloodRequestStatus)
		bloodRequestGroup.PATCH(":id/confirmation", server.updateBloodRequestConfirmation)
	}

	pushGroup := v1.Group("/push")
	{
		pushGroup.GET("", server.getPushState)
		pushGroup.POST("permission", server.requestPushPermission)
		pushGroup.PATCH("preferences", server.updatePushPreferences)
		pushGroup.POST("test", server.sendTestPush)
		pushGroup.DELETE("", server.disablePush)
	}

	v1.GET("/stream", requireSession(server.sessions), server.streamEvents)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server.router = router
	return router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}
