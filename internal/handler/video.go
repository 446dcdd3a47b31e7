package handler

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/queue"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/storage"
	"github.com/kavyand/vidstream/internal/utils"
)

// VideoHandler serves video browse and owner CRUD endpoints.
type VideoHandler struct {
	Videos    *repository.VideoRepo
	Uploader  storage.Uploader
	Publisher *service.EventPublisher
}

func NewVideoHandler(videos *repository.VideoRepo, up storage.Uploader, pub *service.EventPublisher) *VideoHandler {
	return &VideoHandler{Videos: videos, Uploader: up, Publisher: pub}
}

type videoListResp struct {
	Videos      []model.Video `json:"videos"`
	TotalVideos int           `json:"total_videos"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
}

// List returns published videos filtered by ?query, ?owner_id, ?sort_by,
// ?sort_type, paginated with ?page/?limit.
func (h *VideoHandler) List(c echo.Context) error {
	p := repository.ListParams{
		Query:    strings.TrimSpace(c.QueryParam("query")),
		SortBy:   c.QueryParam("sort_by"),
		SortDesc: c.QueryParam("sort_type") == "desc",
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 10),
	}
	if owner := c.QueryParam("owner_id"); owner != "" {
		id, err := pathIDValue(owner)
		if err != nil {
			return utils.BadRequest("invalid owner_id")
		}
		p.OwnerID = id
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	videos, total, err := h.Videos.List(ctx, p)
	if err != nil {
		return storeFailure(err, "could not list videos")
	}
	pages := (total + p.Limit - 1) / p.Limit
	return utils.Respond(c, http.StatusOK, "videos fetched successfully", videoListResp{
		Videos: videos, TotalVideos: total, CurrentPage: p.Page, TotalPages: pages,
	})
}

// Get returns a single video by id.
func (h *VideoHandler) Get(c echo.Context) error {
	id, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("video not found")
		}
		return storeFailure(err, "could not load video")
	}
	return utils.Respond(c, http.StatusOK, "video fetched successfully", v)
}

// Publish uploads a video file plus thumbnail (multipart fields "video"
// and "thumbnail") and creates a published video owned by the caller. A
// video.published event is emitted best effort.
func (h *VideoHandler) Publish(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	if title == "" || description == "" {
		return utils.BadRequest("title and description are required")
	}
	videoFile, err := c.FormFile("video")
	if err != nil {
		return utils.BadRequest("video file is required")
	}
	thumbFile, err := c.FormFile("thumbnail")
	if err != nil {
		return utils.BadRequest("thumbnail is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	videoURL, err := h.upload(ctx, videoFile)
	if err != nil {
		return utils.Internal("video upload failed")
	}
	thumbURL, err := h.upload(ctx, thumbFile)
	if err != nil {
		return utils.Internal("thumbnail upload failed")
	}

	v := model.Video{
		OwnerID:      middleware.CurrentUserID(c),
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		IsPublished:  true,
	}
	if err := h.Videos.Create(ctx, &v); err != nil {
		return storeFailure(err, "could not create video")
	}

	_ = h.Publisher.Publish(ctx, queue.VideoPublishedQueue, queue.VideoPublishedEvent{
		VideoID: v.ID, OwnerID: v.OwnerID, Title: v.Title,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return utils.Respond(c, http.StatusCreated, "video published successfully", v)
}

// Update changes title, description and optionally the thumbnail. Owner
// only; existence is checked before ownership.
func (h *VideoHandler) Update(c echo.Context) error {
	id, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	if title == "" || description == "" {
		return utils.BadRequest("title and description are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.loadOwned(ctx, c, id)
	if err != nil {
		return err
	}
	v.Title = title
	v.Description = description
	if fh, ferr := c.FormFile("thumbnail"); ferr == nil {
		url, err := h.upload(ctx, fh)
		if err != nil {
			return utils.Internal("thumbnail upload failed")
		}
		v.ThumbnailURL = url
	}
	if err := h.Videos.Update(ctx, &v); err != nil {
		return storeFailure(err, "could not update video")
	}
	return utils.Respond(c, http.StatusOK, "video updated successfully", v)
}

// Delete removes an owned video.
func (h *VideoHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.loadOwned(ctx, c, id); err != nil {
		return err
	}
	if err := h.Videos.Delete(ctx, id); err != nil {
		return storeFailure(err, "could not delete video")
	}
	return utils.Respond(c, http.StatusOK, "video deleted successfully", nil)
}

// TogglePublish flips the publish flag of an owned video.
func (h *VideoHandler) TogglePublish(c echo.Context) error {
	id, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.loadOwned(ctx, c, id)
	if err != nil {
		return err
	}
	v.IsPublished = !v.IsPublished
	if err := h.Videos.Update(ctx, &v); err != nil {
		return storeFailure(err, "could not update video")
	}
	return utils.Respond(c, http.StatusOK, "video publish status toggled successfully", v)
}

// loadOwned fetches a video and applies the ownership guard. Existence is
// checked first so a missing video is a 404 even for non-owners.
func (h *VideoHandler) loadOwned(ctx context.Context, c echo.Context, id uint64) (model.Video, error) {
	v, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Video{}, utils.NotFound("video not found")
		}
		return model.Video{}, storeFailure(err, "could not load video")
	}
	if err := service.AssertOwner(v.OwnerID, middleware.CurrentUserID(c)); err != nil {
		return model.Video{}, err
	}
	return v, nil
}

func (h *VideoHandler) upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	path, err := saveTempFile(fh)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)
	return h.Uploader.Upload(ctx, path)
}
