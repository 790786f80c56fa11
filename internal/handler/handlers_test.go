package handler

import (
	"context"
	"testing"

	"github.com/flightdeck/flightdeck/internal/broadcaster"
	"github.com/flightdeck/flightdeck/internal/channel"
	"github.com/flightdeck/flightdeck/internal/ierr"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCreateChannelHandler(t *testing.T) {
	logger := zap.NewNop()
	store := channel.NewStore(logger)
	registry := broadcaster.NewInMemoryRegistry(logger)
	h := NewCreateChannelHandler(store, registry)

	creator := broadcaster.NewConnection("creator")
	bystander := broadcaster.NewConnection("bystander")
	registry.Connect(creator)
	registry.Connect(bystander)

	ctx := broadcaster.WithConnection(context.Background(), creator)

	t.Run("creates and joins the creator", func(t *testing.T) {
		response, err := h.Handle(ctx, CreateChannelRequest{Name: "alpha"})

		assert.NoError(t, err)
		assert.Equal(t, channel.Summary{Id: 1, Name: "alpha"}, response.Channel)
		assert.Contains(t, registry.MembersOf("alpha"), creator.Id)
	})

	t.Run("announces the channel list to everyone", func(t *testing.T) {
		messages := drain(bystander)
		assert.Len(t, messages, 1)
		assert.Equal(t, MethodChannelList, messages[0].Method)

		params, ok := messages[0].Params.(ListChannelsResponse)
		assert.True(t, ok)
		assert.Equal(t, []channel.Summary{{Id: 1, Name: "alpha"}}, params.Channels)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := h.Handle(ctx, CreateChannelRequest{})

		var handlerErr ierr.Error
		assert.ErrorAs(t, err, &handlerErr)
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, handlerErr.Code)
	})

	t.Run("duplicate names allocate distinct ids", func(t *testing.T) {
		response, err := h.Handle(ctx, CreateChannelRequest{Name: "alpha"})

		assert.NoError(t, err)
		assert.Equal(t, 2, response.Channel.Id)
	})
}

func TestJoinChannelHandler(t *testing.T) {
	logger := zap.NewNop()
	store := channel.NewStore(logger)
	registry := broadcaster.NewInMemoryRegistry(logger)
	h := NewJoinChannelHandler(store, registry)

	ch := store.Create("alpha")
	store.Append(ch.Id, channel.Event{Id: "e1", Text: "hello", Author: "bob", Time: "10:30"})

	joiner := broadcaster.NewConnection("joiner")
	registry.Connect(joiner)

	ctx := broadcaster.WithConnection(context.Background(), joiner)

	t.Run("joins by id and returns the event log", func(t *testing.T) {
		response, err := h.Handle(ctx, JoinChannelRequest{Id: ch.Id})

		assert.NoError(t, err)
		assert.Equal(t, "alpha", response.Channel.Name)
		assert.Len(t, response.Channel.Events, 1)
		assert.Contains(t, registry.MembersOf("alpha"), joiner.Id)
	})

	t.Run("unknown id fails closed", func(t *testing.T) {
		_, err := h.Handle(ctx, JoinChannelRequest{Id: 42})

		var handlerErr ierr.Error
		assert.ErrorAs(t, err, &handlerErr)
		assert.Equal(t, ierr.ErrorCodeNotFound, handlerErr.Code)
	})
}

func TestListChannelsHandler(t *testing.T) {
	logger := zap.NewNop()
	store := channel.NewStore(logger)
	h := NewListChannelsHandler(store)

	t.Run("empty store", func(t *testing.T) {
		response, err := h.Handle(context.Background())

		assert.NoError(t, err)
		assert.Empty(t, response.Channels)
	})

	t.Run("newest first", func(t *testing.T) {
		store.Create("alpha")
		store.Create("bravo")

		response, err := h.Handle(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, []channel.Summary{
			{Id: 2, Name: "bravo"},
			{Id: 1, Name: "alpha"},
		}, response.Channels)
	})
}
