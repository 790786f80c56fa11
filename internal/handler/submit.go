package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/flightdeck/flightdeck/internal/broadcaster"
	"github.com/flightdeck/flightdeck/internal/channel"
	"github.com/flightdeck/flightdeck/internal/ierr"
	"go.uber.org/zap"
)

type Position struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`
}

type Clock struct {
	Hr   *int `json:"hr"`
	Mins *int `json:"mins"`
	Secs *int `json:"secs,omitempty"`
}

// SubmitEventRequest addresses its channel by name. Exactly one of Position
// and Text carries the content; Position marks the event as telemetry, Text
// as chat.
type SubmitEventRequest struct {
	Channel  string    `json:"channel"`
	Author   string    `json:"author"`
	Role     string    `json:"role,omitempty"`
	Position *Position `json:"position,omitempty"`
	Text     string    `json:"text,omitempty"`
	Time     *Clock    `json:"time"`
}

// SubmitEventResponse doubles as the params of the event notification sent
// to the channel's audience.
type SubmitEventResponse struct {
	Channel channel.Summary `json:"channel"`
	Event   channel.Event   `json:"event"`
}

// DeliveryPolicies configures the broadcast audience per event category.
type DeliveryPolicies struct {
	Chat     broadcaster.Policy
	Position broadcaster.Policy
}

type SubmitEventHandlerInterface interface {
	Handle(ctx context.Context, req SubmitEventRequest) (SubmitEventResponse, error)
}

type SubmitEventHandler struct {
	logger   *zap.Logger
	store    *channel.Store
	registry broadcaster.Registry
	policies DeliveryPolicies

	// Serializes resolve+append+dispatch so each inbound event runs to
	// completion before the next one touches the store.
	mu sync.Mutex
}

func NewSubmitEventHandler(
	logger *zap.Logger,
	store *channel.Store,
	registry broadcaster.Registry,
	policies DeliveryPolicies,
) *SubmitEventHandler {
	return &SubmitEventHandler{
		logger:   logger,
		store:    store,
		registry: registry,
		policies: policies,
	}
}

// Handle is the ingestion path: validate the payload, resolve the target
// channel by name (failing open with an auto-created channel), auto-join the
// sender, append the normalized record, and dispatch it under the category's
// configured policy. The normalized record is also the reply, so senders get
// an explicit acknowledgment instead of silence.
func (h *SubmitEventHandler) Handle(ctx context.Context, req SubmitEventRequest) (SubmitEventResponse, error) {
	if err := req.validate(); err != nil {
		return SubmitEventResponse{}, err
	}

	connection, ok := broadcaster.ConnectionFromContext(ctx)
	if !ok {
		return SubmitEventResponse{}, errors.New("connection not found in context")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ch, created := h.store.FindOrCreateByName(req.Channel)

	// Auto-join-on-send: the sender must be in the audience for this
	// channel's future broadcasts.
	h.registry.Join(ch.Name, connection)

	if created {
		h.registry.Broadcast(broadcaster.Message{
			Method: MethodChannelList,
			Params: ListChannelsResponse{Channels: h.store.List()},
		}, "", connection.Id, broadcaster.AllConnections)
	}

	event := channel.Event{
		Id:     channel.NewEventId(),
		Text:   req.renderText(),
		Author: req.Author,
		Role:   req.Role,
		Time:   channel.FormatClock(*req.Time.Hr, *req.Time.Mins, req.Time.Secs),
	}

	if !h.store.Append(ch.Id, event) {
		return SubmitEventResponse{},
			ierr.New(ierr.ErrorCodeNotFound, errors.New("channel vanished before append: "+ch.Name))
	}

	h.logger.Debug("event appended",
		zap.String("channelName", ch.Name),
		zap.String("eventId", event.Id),
		zap.String("author", event.Author))

	response := SubmitEventResponse{
		Channel: channel.Summary{
			Id:   ch.Id,
			Name: ch.Name,
		},
		Event: event,
	}

	h.registry.Broadcast(broadcaster.Message{
		Method: MethodEvent,
		Params: response,
	}, ch.Name, connection.Id, h.policy(req))

	return response, nil
}

func (h *SubmitEventHandler) policy(req SubmitEventRequest) broadcaster.Policy {
	if req.Position != nil {
		return h.policies.Position
	}

	return h.policies.Chat
}

func (r SubmitEventRequest) validate() error {
	if r.Channel == "" {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("channel is required"))
	}

	if r.Author == "" {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("author is required"))
	}

	if r.Time == nil || r.Time.Hr == nil || r.Time.Mins == nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("time with hr and mins is required"))
	}

	hasPosition := r.Position != nil
	hasText := r.Text != ""

	if hasPosition == hasText {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("exactly one of position and text is required"))
	}

	if hasPosition {
		p := r.Position
		if p.Latitude == nil || p.Longitude == nil || p.Speed == nil || p.Heading == nil {
			return ierr.New(ierr.ErrorCodeInvalidArgument,
				errors.New("position requires latitude, longitude, speed and heading"))
		}
	}

	return nil
}

func (r SubmitEventRequest) renderText() string {
	if r.Position != nil {
		return channel.FormatPosition(
			*r.Position.Latitude,
			*r.Position.Longitude,
			*r.Position.Speed,
			*r.Position.Heading,
		)
	}

	return r.Text
}
