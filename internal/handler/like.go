package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/utils"
)

// LikeHandler serves like toggles for videos, comments and tweets, plus
// the liked-videos listing. All three share one engine and one table.
type LikeHandler struct {
	Engine *service.ToggleEngine
	Likes  *repository.LikeRepo
}

func NewLikeHandler(engine *service.ToggleEngine, likes *repository.LikeRepo) *LikeHandler {
	return &LikeHandler{Engine: engine, Likes: likes}
}

func (h *LikeHandler) ToggleVideoLike(c echo.Context) error {
	return h.toggle(c, "videoId", model.LikeKindVideo)
}

func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	return h.toggle(c, "commentId", model.LikeKindComment)
}

func (h *LikeHandler) ToggleTweetLike(c echo.Context) error {
	return h.toggle(c, "tweetId", model.LikeKindTweet)
}

func (h *LikeHandler) toggle(c echo.Context, param, kind string) error {
	targetID, err := pathID(c, param)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Engine.Toggle(ctx, middleware.CurrentUserID(c), targetID, kind)
	if err != nil {
		return err
	}
	if res.State == service.ToggleCreated {
		return utils.Respond(c, http.StatusCreated, kind+" liked successfully", res)
	}
	return utils.Respond(c, http.StatusOK, kind+" like removed successfully", res)
}

// ListLikedVideos returns the videos the current user has liked.
func (h *LikeHandler) ListLikedVideos(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	videos, err := h.Likes.ListLikedVideos(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return storeFailure(err, "could not list liked videos")
	}
	return utils.Respond(c, http.StatusOK, "liked videos fetched successfully", videos)
}
