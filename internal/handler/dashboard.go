package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/utils"
)

// DashboardHandler aggregates channel stats for the current user.
type DashboardHandler struct {
	Videos *repository.VideoRepo
	Subs   *repository.SubscriptionRepo
	Likes  *repository.LikeRepo
}

func NewDashboardHandler(videos *repository.VideoRepo, subs *repository.SubscriptionRepo, likes *repository.LikeRepo) *DashboardHandler {
	return &DashboardHandler{Videos: videos, Subs: subs, Likes: likes}
}

type channelStatsResp struct {
	TotalVideos      int   `json:"total_videos"`
	TotalViews       uint64 `json:"total_views"`
	TotalSubscribers int   `json:"total_subscribers"`
	TotalLikes       int   `json:"total_likes"`
}

// Stats returns the current user's channel aggregates.
func (h *DashboardHandler) Stats(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	videos, views, err := h.Videos.OwnerStats(ctx, userID)
	if err != nil {
		return storeFailure(err, "could not load video stats")
	}
	subs, err := h.Subs.CountByChannel(ctx, userID)
	if err != nil {
		return storeFailure(err, "could not count subscribers")
	}
	likes, err := h.Likes.CountVideoLikesForOwner(ctx, userID)
	if err != nil {
		return storeFailure(err, "could not count likes")
	}
	return utils.Respond(c, http.StatusOK, "channel stats fetched successfully", channelStatsResp{
		TotalVideos: videos, TotalViews: views, TotalSubscribers: subs, TotalLikes: likes,
	})
}

// ChannelVideos returns everything the current user has uploaded, drafts included.
func (h *DashboardHandler) ChannelVideos(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	videos, err := h.Videos.ListByOwner(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return storeFailure(err, "could not list channel videos")
	}
	return utils.Respond(c, http.StatusOK, "channel videos fetched successfully", videos)
}
