package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kavyand/vidstream/internal/config"
	"github.com/kavyand/vidstream/internal/handler"
	"github.com/kavyand/vidstream/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth          *handler.AuthHandler
	Videos        *handler.VideoHandler
	Comments      *handler.CommentHandler
	Tweets        *handler.TweetHandler
	Playlists     *handler.PlaylistHandler
	Likes         *handler.LikeHandler
	Subscriptions *handler.SubscriptionHandler
	Dashboard     *handler.DashboardHandler
}

// Register wires every route. Public browse endpoints sit in front of the
// redis response cache; everything mutating or personal goes through the
// authentication gate.
func Register(e *echo.Echo, h Handlers, cfg config.Config, cacheCfg config.CacheConfig, rdb *redis.Client, users middleware.PrincipalStore) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth endpoints that do not require a session.
	auth := e.Group("/api/v1/users")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh-token", h.Auth.Refresh)

	// Public browse surface, cached.
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	pub := e.Group("/api/v1", cache)
	pub.GET("/videos", h.Videos.List)
	pub.GET("/videos/:videoId", h.Videos.Get)
	pub.GET("/comments/:videoId", h.Comments.ListByVideo)

	// Everything below requires a valid access token.
	g := e.Group("/api/v1", middleware.Authenticate(cfg.AccessSecret, users))

	g.POST("/users/logout", h.Auth.Logout)
	g.POST("/users/change-password", h.Auth.ChangePassword)
	g.GET("/users/current-user", h.Auth.CurrentUser)
	g.PATCH("/users/update-account", h.Auth.UpdateDetails)
	g.PATCH("/users/avatar", h.Auth.UpdateAvatar)
	g.PATCH("/users/cover-image", h.Auth.UpdateCoverImage)

	g.POST("/videos", h.Videos.Publish)
	g.PATCH("/videos/:videoId", h.Videos.Update)
	g.DELETE("/videos/:videoId", h.Videos.Delete)
	g.PATCH("/videos/toggle/publish/:videoId", h.Videos.TogglePublish)

	g.POST("/comments/:videoId", h.Comments.Add)
	g.PATCH("/comments/c/:commentId", h.Comments.Update)
	g.DELETE("/comments/c/:commentId", h.Comments.Delete)

	g.POST("/tweets", h.Tweets.Create)
	g.GET("/tweets/user/:userId", h.Tweets.ListByUser)
	g.PATCH("/tweets/:tweetId", h.Tweets.Update)
	g.DELETE("/tweets/:tweetId", h.Tweets.Delete)

	g.POST("/playlist", h.Playlists.Create)
	g.GET("/playlist/user/:userId", h.Playlists.ListByUser)
	g.GET("/playlist/:playlistId", h.Playlists.Get)
	g.PATCH("/playlist/add/:videoId/:playlistId", h.Playlists.AddVideo)
	g.PATCH("/playlist/remove/:videoId/:playlistId", h.Playlists.RemoveVideo)
	g.PATCH("/playlist/:playlistId", h.Playlists.Update)
	g.DELETE("/playlist/:playlistId", h.Playlists.Delete)

	g.POST("/likes/toggle/v/:videoId", h.Likes.ToggleVideoLike)
	g.POST("/likes/toggle/c/:commentId", h.Likes.ToggleCommentLike)
	g.POST("/likes/toggle/t/:tweetId", h.Likes.ToggleTweetLike)
	g.GET("/likes/videos", h.Likes.ListLikedVideos)

	g.POST("/subscriptions/c/:channelId", h.Subscriptions.Toggle)
	g.GET("/subscriptions/c/:channelId", h.Subscriptions.ListSubscribers)
	g.GET("/subscriptions/u/:subscriberId", h.Subscriptions.ListSubscribedChannels)

	g.GET("/dashboard/stats", h.Dashboard.Stats)
	g.GET("/dashboard/videos", h.Dashboard.ChannelVideos)
}
