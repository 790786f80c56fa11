package handler

import (
	"context"

	"github.com/flightdeck/flightdeck/internal/channel"
)

// Server-initiated notification methods.
const (
	MethodChannelList = "channelList"
	MethodEvent       = "event"
)

type ListChannelsResponse struct {
	Channels []channel.Summary `json:"channels"`
}

type ListChannelsHandlerInterface interface {
	Handle(ctx context.Context) (ListChannelsResponse, error)
}

type ListChannelsHandler struct {
	store *channel.Store
}

func NewListChannelsHandler(store *channel.Store) *ListChannelsHandler {
	return &ListChannelsHandler{
		store,
	}
}

func (h *ListChannelsHandler) Handle(ctx context.Context) (ListChannelsResponse, error) {
	return ListChannelsResponse{
		Channels: h.store.List(),
	}, nil
}
