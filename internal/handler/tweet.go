package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/utils"
)

// TweetHandler serves tweet CRUD.
type TweetHandler struct {
	Tweets *repository.TweetRepo
	Users  *repository.UserRepo
}

func NewTweetHandler(tweets *repository.TweetRepo, users *repository.UserRepo) *TweetHandler {
	return &TweetHandler{Tweets: tweets, Users: users}
}

type tweetReq struct {
	Content string `json:"content"`
}

// Create posts a tweet for the current user.
func (h *TweetHandler) Create(c echo.Context) error {
	var req tweetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return utils.BadRequest("content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t := model.Tweet{OwnerID: middleware.CurrentUserID(c), Content: strings.TrimSpace(req.Content)}
	if err := h.Tweets.Create(ctx, &t); err != nil {
		return storeFailure(err, "could not create tweet")
	}
	return utils.Respond(c, http.StatusCreated, "tweet created successfully", t)
}

// ListByUser returns a user's tweets, newest first.
func (h *TweetHandler) ListByUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Users.Exists(ctx, userID)
	if err != nil {
		return storeFailure(err, "could not check user")
	}
	if !ok {
		return utils.NotFound("user not found")
	}
	tweets, err := h.Tweets.ListByOwner(ctx, userID)
	if err != nil {
		return storeFailure(err, "could not list tweets")
	}
	return utils.Respond(c, http.StatusOK, "tweets fetched successfully", tweets)
}

// Update replaces the body of an owned tweet.
func (h *TweetHandler) Update(c echo.Context) error {
	id, err := pathID(c, "tweetId")
	if err != nil {
		return err
	}
	var req tweetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return utils.BadRequest("content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tweets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("tweet not found")
		}
		return storeFailure(err, "could not load tweet")
	}
	if err := service.AssertOwner(t.OwnerID, middleware.CurrentUserID(c)); err != nil {
		return err
	}
	if err := h.Tweets.UpdateContent(ctx, id, strings.TrimSpace(req.Content)); err != nil {
		return storeFailure(err, "could not update tweet")
	}
	updated, err := h.Tweets.GetByID(ctx, id)
	if err != nil {
		return storeFailure(err, "could not load tweet")
	}
	return utils.Respond(c, http.StatusOK, "tweet updated successfully", updated)
}

// Delete removes an owned tweet.
func (h *TweetHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "tweetId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tweets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("tweet not found")
		}
		return storeFailure(err, "could not load tweet")
	}
	if err := service.AssertOwner(t.OwnerID, middleware.CurrentUserID(c)); err != nil {
		return err
	}
	if err := h.Tweets.Delete(ctx, id); err != nil {
		return storeFailure(err, "could not delete tweet")
	}
	return utils.Respond(c, http.StatusOK, "tweet deleted successfully", nil)
}
