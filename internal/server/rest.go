package server

import (
	"encoding/json"
	"net/http"

	"github.com/flightdeck/flightdeck/internal/channel"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RESTServer exposes the debug dump of the full store, channels with their
// complete event logs. Inspection only; the real-time contract lives on the
// websocket.
type RESTServer struct {
	logger *zap.Logger
	store  *channel.Store
}

func NewRESTServer(
	logger *zap.Logger,
	store *channel.Store,
) *RESTServer {
	return &RESTServer{
		logger,
		store,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(s.store.Dump())
		if err != nil {
			s.logger.Error("failed to encode store dump", zap.Error(err))
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}).Methods("GET", "OPTIONS")
}
