package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/core"
	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/realtime"
	"github.com/burrowhq/burrow/pkg/config"
	"github.com/burrowhq/burrow/pkg/logging"
)

// Router wires the REST surface to the core services
type Router struct {
	cfg           *config.Config
	users         *core.UserService
	communities   *core.CommunityService
	posts         *core.PostService
	comments      *core.CommentService
	votes         *core.VoteService
	relationships *core.RelationshipService
	reports       *core.ReportService
	notifications *core.NotificationService
	dispatcher    *core.Dispatcher
	hub           *realtime.Hub
	db            *db.DB
	logger        *zap.Logger
}

// Services groups the core services the router depends on
type Services struct {
	Users         *core.UserService
	Communities   *core.CommunityService
	Posts         *core.PostService
	Comments      *core.CommentService
	Votes         *core.VoteService
	Relationships *core.RelationshipService
	Reports       *core.ReportService
	Notifications *core.NotificationService
	Dispatcher    *core.Dispatcher
}

// NewRouter creates a new API router
func NewRouter(cfg *config.Config, services Services, hub *realtime.Hub, database *db.DB) *Router {
	return &Router{
		cfg:           cfg,
		users:         services.Users,
		communities:   services.Communities,
		posts:         services.Posts,
		comments:      services.Comments,
		votes:         services.Votes,
		relationships: services.Relationships,
		reports:       services.Reports,
		notifications: services.Notifications,
		dispatcher:    services.Dispatcher,
		hub:           hub,
		db:            database,
		logger:        logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(RequestID(), RequestLogger(), Recovery())

	engine.GET("/health", r.healthHandler)

	api := engine.Group("/api")

	// Public reads
	api.POST("/users", r.registerUser)
	api.GET("/users/:id", r.getUser)
	api.GET("/users/:id/posts", r.listUserPosts)
	api.GET("/users/:id/comments", r.listUserComments)
	api.GET("/users/:id/followers", r.listFollowers)
	api.GET("/users/:id/following", r.listFollowing)

	api.GET("/communities", r.listCommunities)
	api.GET("/communities/:id", r.getCommunity)
	api.GET("/communities/:id/posts", r.listCommunityPosts)
	api.GET("/communities/:id/moderators", r.listModerators)

	api.GET("/feed", r.getFeed)
	api.GET("/tags/:tag/posts", r.listTagPosts)
	api.GET("/posts/:id", r.getPost)
	api.GET("/posts/:id/comments", r.getThread)

	// Authenticated surface
	authed := api.Group("", Auth(r.cfg.Auth.JWTSecret))

	authed.GET("/profile", r.getProfile)
	authed.PUT("/profile", r.updateProfile)
	authed.PUT("/profile/password", r.changePassword)
	authed.PUT("/profile/avatar", r.updateAvatar)
	authed.GET("/profile/saved", r.listSavedPosts)

	authed.POST("/users/:id/follow", r.followUser)
	authed.DELETE("/users/:id/follow", r.unfollowUser)

	authed.POST("/communities", r.createCommunity)
	authed.PUT("/communities/:id", r.updateCommunity)
	authed.POST("/communities/:id/join", r.joinCommunity)
	authed.DELETE("/communities/:id/join", r.leaveCommunity)
	authed.POST("/communities/:id/moderators/:userId", r.addModerator)
	authed.DELETE("/communities/:id/moderators/:userId", r.removeModerator)
	authed.POST("/communities/:id/invite/:userId", r.inviteToCommunity)

	authed.POST("/posts", r.createPost)
	authed.PUT("/posts/:id", r.updatePost)
	authed.DELETE("/posts/:id", r.deletePost)
	authed.POST("/posts/:id/vote", r.votePost)
	authed.POST("/posts/:id/save", r.savePost)
	authed.DELETE("/posts/:id/save", r.unsavePost)
	authed.POST("/posts/:id/comments", r.createComment)

	authed.PUT("/comments/:id", r.updateComment)
	authed.DELETE("/comments/:id", r.deleteComment)
	authed.POST("/comments/:id/vote", r.voteComment)

	authed.POST("/reports", r.fileReport)
	authed.GET("/reports", r.listOpenReports)
	authed.POST("/reports/:id/resolve", r.resolveReport)

	authed.GET("/notifications", r.listNotifications)
	authed.GET("/notifications/unread", r.unreadCount)
	authed.POST("/notifications/:id/read", r.markNotificationRead)
	authed.POST("/notifications/read-all", r.markAllNotificationsRead)

	// Admin surface
	admin := api.Group("/admin", Auth(r.cfg.Auth.JWTSecret), RequireAdmin())
	admin.GET("/users", r.adminListUsers)
	admin.DELETE("/communities/:id", r.adminDeleteCommunity)

	// Realtime push channel
	authed.GET("/ws", r.serveWebsocket)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "service": "burrow-api"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "burrow-api"})
}
