package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/flightdeck/flightdeck/internal/broadcaster"
	"github.com/flightdeck/flightdeck/internal/channel"
	"github.com/flightdeck/flightdeck/internal/handler"
	"github.com/flightdeck/flightdeck/internal/server"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type App struct {
	logger          *zap.Logger
	settings        Settings
	websocketServer *server.WebSocketServer
	restServer      *server.RESTServer
}

func NewApp(logger *zap.Logger, settings Settings) (*App, error) {
	chatPolicy, err := broadcaster.ParsePolicy(settings.ChatDelivery)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_DELIVERY: %w", err)
	}

	positionPolicy, err := broadcaster.ParsePolicy(settings.PositionDelivery)
	if err != nil {
		return nil, fmt.Errorf("invalid POSITION_DELIVERY: %w", err)
	}

	originChecker := server.NewOriginChecker(splitOrigins(settings.AllowedOrigins))
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	store := channel.NewStore(logger)
	registry := broadcaster.NewInMemoryRegistry(logger)

	heartbeatHandler := handler.NewHeartbeatHandler()
	listChannelsHandler := handler.NewListChannelsHandler(store)
	createChannelHandler := handler.NewCreateChannelHandler(store, registry)
	joinChannelHandler := handler.NewJoinChannelHandler(store, registry)
	submitEventHandler := handler.NewSubmitEventHandler(logger, store, registry, handler.DeliveryPolicies{
		Chat:     chatPolicy,
		Position: positionPolicy,
	})

	router := server.NewRouter(
		logger,
		heartbeatHandler,
		listChannelsHandler,
		createChannelHandler,
		joinChannelHandler,
		submitEventHandler,
	)

	websocketServer := server.NewWebSocketServer(
		logger,
		websocketUpgrader,
		registry,
		router,
	)
	restServer := server.NewRESTServer(
		logger,
		store,
	)

	return &App{
		logger,
		settings,
		websocketServer,
		restServer,
	}, nil
}

func (a *App) run(ctx context.Context) {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := mux.NewRouter().
		PathPrefix(a.settings.BasePath).
		Subrouter()

	a.websocketServer.Register(router)
	a.restServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	a.logger.Info("starting http server",
		zap.String("address", address))

	go func() {
		err := httpServer.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start http server",
				zap.Error(err))
		}
	}()

	<-notifyCtx.Done()

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Fatal("http server shutdown failed",
			zap.Error(err))
	}

	a.logger.Info("http server stopped")
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}

	return strings.Split(origins, ",")
}

func main() {
	ctx := context.Background()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		log.Fatalln("failed to parse settings from environment:", err)
	}

	logger, err := buildZapLogger(settings.LogEncoding)
	if err != nil {
		log.Fatalln("failed to build logger:", err)
	}
	defer logger.Sync()

	app, err := NewApp(logger, settings)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}

	app.run(ctx)
}
