package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/flightdeck/flightdeck/internal/broadcaster"
	"github.com/flightdeck/flightdeck/internal/channel"
	"github.com/flightdeck/flightdeck/internal/handler"
	"github.com/flightdeck/flightdeck/internal/ierr"
	"github.com/flightdeck/flightdeck/internal/rpc"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestRouter() *Router {
	logger := zap.NewNop()
	store := channel.NewStore(logger)
	registry := broadcaster.NewInMemoryRegistry(logger)

	return NewRouter(
		logger,
		handler.NewHeartbeatHandler(),
		handler.NewListChannelsHandler(store),
		handler.NewCreateChannelHandler(store, registry),
		handler.NewJoinChannelHandler(store, registry),
		handler.NewSubmitEventHandler(logger, store, registry, defaultPolicies()),
	)
}

func rawParams(raw string) *json.RawMessage {
	params := json.RawMessage(raw)

	return &params
}

func TestRouterRouteRequest(t *testing.T) {
	router := newTestRouter()
	ctx := broadcaster.WithConnection(context.Background(), broadcaster.NewConnection("test"))

	t.Run("request gets a reply", func(t *testing.T) {
		response := router.RouteRequest(ctx, rpc.Request{Id: 1, Method: "heartbeat"})

		assert.NotNil(t, response)
		assert.Equal(t, 1, response.RequestId)
		assert.False(t, response.IsFailure())
	})

	t.Run("missing params", func(t *testing.T) {
		response := router.RouteRequest(ctx, rpc.Request{Id: 2, Method: "createChannel"})

		assert.NotNil(t, response)
		assert.True(t, response.IsFailure())
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, response.Error.Code)
	})

	t.Run("invalid params", func(t *testing.T) {
		response := router.RouteRequest(ctx, rpc.Request{Id: 3, Method: "joinChannel", Params: rawParams(`{"id":"one"}`)})

		assert.NotNil(t, response)
		assert.True(t, response.IsFailure())
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, response.Error.Code)
	})

	t.Run("unknown method", func(t *testing.T) {
		response := router.RouteRequest(ctx, rpc.Request{Id: 4, Method: "teleport"})

		assert.NotNil(t, response)
		assert.True(t, response.IsFailure())
		assert.Equal(t, ierr.ErrorCodeNotFound, response.Error.Code)
	})

	t.Run("failed notification is dropped without a reply", func(t *testing.T) {
		response := router.RouteRequest(ctx, rpc.Request{Method: "teleport"})

		assert.Nil(t, response)
	})

	t.Run("successful notification produces no reply", func(t *testing.T) {
		response := router.RouteRequest(ctx, rpc.Request{Method: "createChannel", Params: rawParams(`{"name":"alpha"}`)})

		assert.Nil(t, response)
	})
}
