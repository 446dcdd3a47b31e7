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

// PlaylistHandler serves playlist CRUD and membership edits.
type PlaylistHandler struct {
	Playlists *repository.PlaylistRepo
	Videos    *repository.VideoRepo
	Users     *repository.UserRepo
}

func NewPlaylistHandler(playlists *repository.PlaylistRepo, videos *repository.VideoRepo, users *repository.UserRepo) *PlaylistHandler {
	return &PlaylistHandler{Playlists: playlists, Videos: videos, Users: users}
}

type playlistReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create makes an empty playlist owned by the current user.
func (h *PlaylistHandler) Create(c echo.Context) error {
	var req playlistReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return utils.BadRequest("playlist name is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.Playlist{
		OwnerID:     middleware.CurrentUserID(c),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Playlists.Create(ctx, &p); err != nil {
		return storeFailure(err, "could not create playlist")
	}
	return utils.Respond(c, http.StatusCreated, "playlist created successfully", p)
}

// ListByUser returns a user's playlists.
func (h *PlaylistHandler) ListByUser(c echo.Context) error {
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
	lists, err := h.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		return storeFailure(err, "could not list playlists")
	}
	return utils.Respond(c, http.StatusOK, "playlists fetched successfully", lists)
}

// Get returns one playlist with its video ids.
func (h *PlaylistHandler) Get(c echo.Context) error {
	id, err := pathID(c, "playlistId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Playlists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("playlist not found")
		}
		return storeFailure(err, "could not load playlist")
	}
	return utils.Respond(c, http.StatusOK, "playlist fetched successfully", p)
}

// loadOwned fetches a playlist and checks the caller owns it. The lookup
// runs before the ownership check so a missing playlist stays a 404.
func (h *PlaylistHandler) loadOwned(c echo.Context, id uint64) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Playlists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("playlist not found")
		}
		return storeFailure(err, "could not load playlist")
	}
	return service.AssertOwner(p.OwnerID, middleware.CurrentUserID(c))
}

// AddVideo appends an existing video to an owned playlist.
func (h *PlaylistHandler) AddVideo(c echo.Context) error {
	playlistID, err := pathID(c, "playlistId")
	if err != nil {
		return err
	}
	videoID, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	if err := h.loadOwned(c, playlistID); err != nil {
		return err
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
	if err := h.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return utils.BadRequest("video already in playlist")
		}
		return storeFailure(err, "could not add video to playlist")
	}
	return utils.Respond(c, http.StatusOK, "video added to playlist successfully", nil)
}

// RemoveVideo detaches a video from an owned playlist.
func (h *PlaylistHandler) RemoveVideo(c echo.Context) error {
	playlistID, err := pathID(c, "playlistId")
	if err != nil {
		return err
	}
	videoID, err := pathID(c, "videoId")
	if err != nil {
		return err
	}
	if err := h.loadOwned(c, playlistID); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("video not in playlist")
		}
		return storeFailure(err, "could not remove video from playlist")
	}
	return utils.Respond(c, http.StatusOK, "video removed from playlist successfully", nil)
}

// Update renames an owned playlist.
func (h *PlaylistHandler) Update(c echo.Context) error {
	id, err := pathID(c, "playlistId")
	if err != nil {
		return err
	}
	var req playlistReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return utils.BadRequest("playlist name is required")
	}
	if err := h.loadOwned(c, id); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Playlists.Update(ctx, id, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description)); err != nil {
		return storeFailure(err, "could not update playlist")
	}
	p, err := h.Playlists.GetByID(ctx, id)
	if err != nil {
		return storeFailure(err, "could not load playlist")
	}
	return utils.Respond(c, http.StatusOK, "playlist updated successfully", p)
}

// Delete removes an owned playlist and its memberships.
func (h *PlaylistHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "playlistId")
	if err != nil {
		return err
	}
	if err := h.loadOwned(c, id); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Playlists.Delete(ctx, id); err != nil {
		return storeFailure(err, "could not delete playlist")
	}
	return utils.Respond(c, http.StatusOK, "playlist deleted successfully", nil)
}
