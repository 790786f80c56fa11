package handler

import (
	"context"
	"errors"

	"github.com/flightdeck/flightdeck/internal/broadcaster"
	"github.com/flightdeck/flightdeck/internal/channel"
	"github.com/flightdeck/flightdeck/internal/ierr"
)

type CreateChannelRequest struct {
	Name string `json:"name"`
}

type CreateChannelResponse struct {
	Channel channel.Summary `json:"channel"`
}

type CreateChannelHandlerInterface interface {
	Handle(ctx context.Context, req CreateChannelRequest) (CreateChannelResponse, error)
}

type CreateChannelHandler struct {
	store    *channel.Store
	registry broadcaster.Registry
}

func NewCreateChannelHandler(
	store *channel.Store,
	registry broadcaster.Registry,
) *CreateChannelHandler {
	return &CreateChannelHandler{
		store,
		registry,
	}
}

// Handle creates a channel, joins the creator to it, and announces the
// updated channel list to every connected client so new channels are
// discoverable without membership.
func (h *CreateChannelHandler) Handle(ctx context.Context, req CreateChannelRequest) (CreateChannelResponse, error) {
	if req.Name == "" {
		return CreateChannelResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("channel name is required"))
	}

	connection, ok := broadcaster.ConnectionFromContext(ctx)
	if !ok {
		return CreateChannelResponse{}, errors.New("connection not found in context")
	}

	ch := h.store.Create(req.Name)

	h.registry.Join(ch.Name, connection)

	h.registry.Broadcast(broadcaster.Message{
		Method: MethodChannelList,
		Params: ListChannelsResponse{Channels: h.store.List()},
	}, "", connection.Id, broadcaster.AllConnections)

	return CreateChannelResponse{
		Channel: channel.Summary{
			Id:   ch.Id,
			Name: ch.Name,
		},
	}, nil
}
