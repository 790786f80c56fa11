package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/flightdeck/flightdeck/internal/broadcaster"
	"github.com/flightdeck/flightdeck/internal/channel"
	"github.com/flightdeck/flightdeck/internal/ierr"
)

type JoinChannelRequest struct {
	Id int `json:"id"`
}

type JoinChannelResponse struct {
	Channel channel.Channel `json:"channel"`
}

type JoinChannelHandlerInterface interface {
	Handle(ctx context.Context, req JoinChannelRequest) (JoinChannelResponse, error)
}

type JoinChannelHandler struct {
	store    *channel.Store
	registry broadcaster.Registry
}

func NewJoinChannelHandler(
	store *channel.Store,
	registry broadcaster.Registry,
) *JoinChannelHandler {
	return &JoinChannelHandler{
		store,
		registry,
	}
}

// Handle joins the caller to an existing channel addressed by id. Id
// addressing fails closed: an unknown id is a NotFound reply, never an
// implicit creation. The joined-confirmation carries the channel's full
// event log so the client can render history immediately.
func (h *JoinChannelHandler) Handle(ctx context.Context, req JoinChannelRequest) (JoinChannelResponse, error) {
	if req.Id <= 0 {
		return JoinChannelResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("channel id is required"))
	}

	connection, ok := broadcaster.ConnectionFromContext(ctx)
	if !ok {
		return JoinChannelResponse{}, errors.New("connection not found in context")
	}

	ch, ok := h.store.FindById(req.Id)
	if !ok {
		return JoinChannelResponse{},
			ierr.New(ierr.ErrorCodeNotFound, errors.New("channel not found: "+strconv.Itoa(req.Id)))
	}

	// Membership is keyed by name, the canonical broadcast-room key.
	h.registry.Join(ch.Name, connection)

	return JoinChannelResponse{
		Channel: ch,
	}, nil
}
