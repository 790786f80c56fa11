package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/flightdeck/flightdeck/internal/handler"
	"github.com/flightdeck/flightdeck/internal/ierr"
	"github.com/flightdeck/flightdeck/internal/rpc"
	"go.uber.org/zap"
)

type Router struct {
	logger *zap.Logger

	heartbeatHandler     handler.HeartbeatHandlerInterface
	listChannelsHandler  handler.ListChannelsHandlerInterface
	createChannelHandler handler.CreateChannelHandlerInterface
	joinChannelHandler   handler.JoinChannelHandlerInterface
	submitEventHandler   handler.SubmitEventHandlerInterface
}

func NewRouter(
	logger *zap.Logger,
	heartbeatHandler handler.HeartbeatHandlerInterface,
	listChannelsHandler handler.ListChannelsHandlerInterface,
	createChannelHandler handler.CreateChannelHandlerInterface,
	joinChannelHandler handler.JoinChannelHandlerInterface,
	submitEventHandler handler.SubmitEventHandlerInterface,
) *Router {
	return &Router{
		logger,
		heartbeatHandler,
		listChannelsHandler,
		createChannelHandler,
		joinChannelHandler,
		submitEventHandler,
	}
}

func (r *Router) RouteRequest(ctx context.Context, request rpc.Request) *rpc.Response {
	response, err := r.Handle(ctx, request)
	if err != nil {
		if !request.ReplyExpected() {
			// Nothing to reply to; the log line is all a notification gets.
			r.logger.Warn("dropping failed notification",
				zap.String("method", request.Method),
				zap.Error(err))

			return nil
		}

		response := request.ReplyWithError(r.mapError(err))

		return &response
	}

	hasResponse := response != nil

	if request.ReplyExpected() && !hasResponse {
		r.logger.Error("handler did not return a response but one was expected", zap.String("method", request.Method))

		response := request.ReplyWithError(
			ierr.New(ierr.ErrorCodeInternal, errors.New("internal error")),
		)

		return &response
	}

	if !request.ReplyExpected() {
		// Fire-and-forget request; the acknowledgment has nowhere to go.
		return nil
	}

	if hasResponse {
		rawJson, err := json.Marshal(response)
		if err != nil {
			response := request.ReplyWithError(r.mapError(err))

			return &response
		}

		payload := json.RawMessage(rawJson)
		reply := request.Reply(&payload)

		return &reply
	}

	return nil
}

func (r *Router) Handle(ctx context.Context, request rpc.Request) (any, error) {
	switch request.Method {
	case "heartbeat":
		return r.heartbeatHandler.Handle(), nil
	case "listChannels":
		return r.listChannelsHandler.Handle(ctx)
	case "createChannel":
		var createReq handler.CreateChannelRequest
		if err := decodeParams(request.Params, &createReq); err != nil {
			return nil, err
		}

		return r.createChannelHandler.Handle(ctx, createReq)
	case "joinChannel":
		var joinReq handler.JoinChannelRequest
		if err := decodeParams(request.Params, &joinReq); err != nil {
			return nil, err
		}

		return r.joinChannelHandler.Handle(ctx, joinReq)
	case "submitEvent":
		var submitReq handler.SubmitEventRequest
		if err := decodeParams(request.Params, &submitReq); err != nil {
			return nil, err
		}

		return r.submitEventHandler.Handle(ctx, submitReq)
	default:
		return nil, ierr.New(ierr.ErrorCodeNotFound, errors.New("method not found: "+request.Method))
	}
}

func (r *Router) mapError(err error) ierr.Error {
	var handlerErr ierr.Error
	if errors.As(err, &handlerErr) {
		return handlerErr
	}

	r.logger.Error("error in rpc handler", zap.Error(err))

	return ierr.New(ierr.ErrorCodeInternal, errors.New("internal error"))
}

func decodeParams(params *json.RawMessage, v any) error {
	if params == nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("missing params"))
	}

	if err := json.Unmarshal(*params, v); err != nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid params: "+err.Error()))
	}

	return nil
}
