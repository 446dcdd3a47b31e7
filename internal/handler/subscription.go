package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/middleware"
	"github.com/kavyand/vidstream/internal/queue"
	"github.com/kavyand/vidstream/internal/repository"
	"github.com/kavyand/vidstream/internal/service"
	"github.com/kavyand/vidstream/internal/utils"
)

// SubscriptionHandler serves the channel subscription toggle and the two
// membership listings.
type SubscriptionHandler struct {
	Engine    *service.ToggleEngine
	Subs      *repository.SubscriptionRepo
	Users     *repository.UserRepo
	Publisher *service.EventPublisher
}

func NewSubscriptionHandler(engine *service.ToggleEngine, subs *repository.SubscriptionRepo, users *repository.UserRepo, pub *service.EventPublisher) *SubscriptionHandler {
	return &SubscriptionHandler{Engine: engine, Subs: subs, Users: users, Publisher: pub}
}

// Toggle subscribes or unsubscribes the current user to a channel. A
// channel is just another user; subscribing to yourself is rejected.
func (h *SubscriptionHandler) Toggle(c echo.Context) error {
	channelID, err := pathID(c, "channelId")
	if err != nil {
		return err
	}
	actorID := middleware.CurrentUserID(c)
	if channelID == actorID {
		return utils.BadRequest("cannot subscribe to your own channel")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Engine.Toggle(ctx, actorID, channelID, service.SubscriptionKind)
	if err != nil {
		return err
	}
	if res.State == service.ToggleCreated {
		go h.publishSubscribed(actorID, channelID)
		return utils.Respond(c, http.StatusCreated, "subscribed successfully", res)
	}
	return utils.Respond(c, http.StatusOK, "unsubscribed successfully", res)
}

func (h *SubscriptionHandler) publishSubscribed(subscriberID, channelID uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.Publisher.Publish(ctx, queue.ChannelSubscribedQueue, queue.ChannelSubscribedEvent{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		SubscribedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// ListSubscribers returns the users subscribed to a channel.
func (h *SubscriptionHandler) ListSubscribers(c echo.Context) error {
	channelID, err := pathID(c, "channelId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Users.Exists(ctx, channelID)
	if err != nil {
		return storeFailure(err, "could not check channel")
	}
	if !ok {
		return utils.NotFound("channel not found")
	}
	users, err := h.Subs.ListSubscribers(ctx, channelID)
	if err != nil {
		return storeFailure(err, "could not list subscribers")
	}
	return utils.Respond(c, http.StatusOK, "subscribers fetched successfully", users)
}

// ListSubscribedChannels returns the channels a user is subscribed to.
func (h *SubscriptionHandler) ListSubscribedChannels(c echo.Context) error {
	subscriberID, err := pathID(c, "subscriberId")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Users.Exists(ctx, subscriberID)
	if err != nil {
		return storeFailure(err, "could not check user")
	}
	if !ok {
		return utils.NotFound("user not found")
	}
	channels, err := h.Subs.ListSubscribedChannels(ctx, subscriberID)
	if err != nil {
		return storeFailure(err, "could not list subscribed channels")
	}
	return utils.Respond(c, http.StatusOK, "subscribed channels fetched successfully", channels)
}
