package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/utils"
)

// CommentStore is the slice of the comment repository these endpoints
// use. repository.CommentRepo satisfies it.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	ListByVideo(ctx context.Context, videoID uint64, page, limit int) ([]model.Comment, int, error)
	UpdateContent(ctx context.Context, id uint64, content string) error
	Delete(ctx context.Context, id uint64) error
}

// VideoChecker answers whether a video exists before comments attach to it.
type VideoChecker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// CommentHandler serves comment listing and owner CRUD.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoChecker
}

func NewCommentHandler(comments CommentStore, videos VideoChecker) *CommentHandler {
	return &CommentHandler{Comments: comments, Videos: videos}
}

type commentReq struct {
	Content string `json:"content"`
}

type commentListResp struct {
	Comments      []model.Comment `json:"comments"`
	TotalComments int             `json:"total_comments"`
	CurrentPage   int             `json:"current_page"`
	TotalPages    int             `json:"total_pages"`
}

// ListByVideo returns a page of comments for a video, newest first.
func (h *CommentHandler) ListByVideo(c echo.Context) error {
	videoID, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Videos.Exists(ctx, videoID)
	if err != nil {
		return storeFailure(err, "could not check video")
	}
	if !ok {
		return utils.NotFound("video not found")
	}
	comments, total, err := h.Comments.ListByVideo(ctx, videoID, page, limit)
	if err != nil {
		return storeFailure(err, "could not list comments")
	}
	return utils.Respond(c, http.StatusOK, "comments fetched successfully", commentListResp{
		Comments: comments, TotalComments: total, CurrentPage: page,
		TotalPages: (total + limit - 1) / limit,
	})
}

// Add creates a comment on a video for the current user.
func (h *CommentHandler) Add(c echo.Context) error {
	videoID, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return utils.BadRequest("comment content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Videos.Exists(ctx, videoID)
	if err != nil {
		return storeFailure(err, "could not check video")
	}
	if !ok {
		return utils.NotFound("video not found")
	}
	cm := model.Comment{
		VideoID: videoID,
		OwnerID: middleware.CurrentUserID(c),
		Content: strings.TrimSpace(req.Content),
	}
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return storeFailure(err, "could not add comment")
	}
	return utils.Respond(c, http.StatusCreated, "comment added successfully", cm)
}

// Update replaces the body of an owned comment.
func (h *CommentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "commentId")
	if err != nil {
		return err
	}
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return utils.BadRequest("comment content is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("comment not found")
		}
		return storeFailure(err, "could not load comment")
	}
	if err := service.AssertOwner(cm.OwnerID, middleware.CurrentUserID(c)); err != nil {
		return err
	}
	if err := h.Comments.UpdateContent(ctx, id, strings.TrimSpace(req.Content)); err != nil {
		return storeFailure(err, "could not update comment")
	}
	updated, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return storeFailure(err, "could not load comment")
	}
	return utils.Respond(c, http.StatusOK, "comment updated successfully", updated)
}

// Delete removes an owned comment.
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "commentId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("comment not found")
		}
		return storeFailure(err, "could not load comment")
	}
	if err := service.AssertOwner(cm.OwnerID, middleware.CurrentUserID(c)); err != nil {
		return err
	}
	if err := h.Comments.Delete(ctx, id); err != nil {
		return storeFailure(err, "could not delete comment")
	}
	return utils.Respond(c, http.StatusOK, "comment deleted successfully", nil)
}
