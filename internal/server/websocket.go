package server

import (
	"encoding/json"
	"net/http"

	"github.com/flightdeck/flightdeck/internal/broadcaster"
	"github.com/flightdeck/flightdeck/internal/rpc"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxMessageSize = 4096

type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader
	registry broadcaster.Registry
	router   *Router
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	registry broadcaster.Registry,
	router *Router,
) *WebSocketServer {
	return &WebSocketServer{
		logger,
		upgrader,
		registry,
		router,
	}
}

func (s *WebSocketServer) Register(router *mux.Router) {
	router.HandleFunc("/websocket", s.handle)
}

func (s *WebSocketServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connection := broadcaster.NewConnection(uuid.NewString())

	logger := s.logger.With(zap.String("connectionId", connection.Id))
	logger.Info("websocket connection established")

	conn.SetReadLimit(maxMessageSize)

	s.registry.Connect(connection)

	// The write pump is the only goroutine writing to the socket; replies
	// from the read loop are funneled through it.
	replies := make(chan rpc.Response)

	go s.writePump(logger, conn, connection, replies)

	s.readLoop(logger, conn, r, connection, replies)

	s.registry.Disconnect(connection.Id)
	conn.Close()

	logger.Info("websocket connection closed")
}

func (s *WebSocketServer) readLoop(
	logger *zap.Logger,
	conn *websocket.Conn,
	r *http.Request,
	connection *broadcaster.Connection,
	replies chan<- rpc.Response,
) {
	defer close(replies)

	ctx := broadcaster.WithConnection(r.Context(), connection)

	for {
		var request rpc.Request
		if err := conn.ReadJSON(&request); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", zap.Error(err))
			}

			return
		}

		response := s.router.RouteRequest(ctx, request)
		if response != nil {
			replies <- *response
		}
	}
}

func (s *WebSocketServer) writePump(
	logger *zap.Logger,
	conn *websocket.Conn,
	connection *broadcaster.Connection,
	replies <-chan rpc.Response,
) {
	// Closing the connection unblocks the read loop, which then closes
	// replies; draining keeps the read loop from blocking on a reply the
	// pump will never write.
	defer func() {
		conn.Close()
		for range replies {
		}
	}()

	for {
		select {
		case message, ok := <-connection.Send:
			if !ok {
				// Registry disconnected us.
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			notification, err := encodeNotification(message)
			if err != nil {
				logger.Error("failed to encode notification",
					zap.String("method", message.Method),
					zap.Error(err))

				continue
			}

			if err := conn.WriteJSON(notification); err != nil {
				logger.Warn("websocket write failed", zap.Error(err))
				return
			}
		case response, ok := <-replies:
			if !ok {
				return
			}

			if err := conn.WriteJSON(response); err != nil {
				logger.Warn("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func encodeNotification(message broadcaster.Message) (rpc.Request, error) {
	rawJson, err := json.Marshal(message.Params)
	if err != nil {
		return rpc.Request{}, err
	}

	params := json.RawMessage(rawJson)

	return rpc.NewNotification(message.Method, &params), nil
}
