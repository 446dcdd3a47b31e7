package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kavyand/vidstream/internal/config"
	"github.com/kavyand/vidstream/internal/database"
	"github.com/kavyand/vidstream/internal/handler"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/queue"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/router"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/storage"
	"github.com/kavyand/vidstream/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	if err := database.RunMigrations(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	videos := repository.NewVideoRepo(db)
	comments := repository.NewCommentRepo(db)
	tweets := repository.NewTweetRepo(db)
	playlists := repository.NewPlaylistRepo(db)
	likes := repository.NewLikeRepo(db)
	subs := repository.NewSubscriptionRepo(db)

	sessions := service.NewSession(users, cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	publisher := service.NewEventPublisher(cfg.AMQPURL)
	uploader := storage.NewS3Uploader(cfg.MediaBucket, cfg.MediaRegion, cfg.MediaBaseURL)

	// The like engine resolves targets per kind; the subscription engine
	// treats channels as users.
	likeEngine := service.NewToggleEngine(service.LikeToggleStore{Likes: likes}, func(ctx context.Context, targetID uint64, kind string) (bool, error) {
		switch kind {
		case model.LikeKindVideo:
			return videos.Exists(ctx, targetID)
		case model.LikeKindComment:
			return comments.Exists(ctx, targetID)
		case model.LikeKindTweet:
			return tweets.Exists(ctx, targetID)
		}
		return false, nil
	})
	subEngine := service.NewToggleEngine(service.SubscriptionToggleStore{Subs: subs}, func(ctx context.Context, targetID uint64, _ string) (bool, error) {
		return users.Exists(ctx, targetID)
	})

	if cfg.AMQPURL != "" {
		go queue.StartEngagementConsumer(cfg.AMQPURL)
	}

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, sessions, uploader),
		Videos:        handler.NewVideoHandler(videos, uploader, publisher),
		Comments:      handler.NewCommentHandler(comments, videos),
		Tweets:        handler.NewTweetHandler(tweets, users),
		Playlists:     handler.NewPlaylistHandler(playlists, videos, users),
		Likes:         handler.NewLikeHandler(likeEngine, likes),
		Subscriptions: handler.NewSubscriptionHandler(subEngine, subs, users, publisher),
		Dashboard:     handler.NewDashboardHandler(videos, subs, likes),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = utils.HTTPErrorHandler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, h, cfg, cacheCfg, rdb, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
