package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"wahlnetz-service/internal/app"
)

// RouterConfig holds the dependencies of the HTTP surface.
type RouterConfig struct {
	Service     *app.SurveyService
	Logger      *slog.Logger
	CORSOrigins []string
	// KeepAlive overrides DefaultKeepAlive for websocket viewers.
	KeepAlive time.Duration
}

// NewRouter wires the REST endpoints and the websocket channel.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rest := NewRESTHandler(cfg.Service, logger)
	ws := NewWSHandler(cfg.Service, logger)
	if cfg.KeepAlive > 0 {
		ws.keepAlive = cfg.KeepAlive
	}

	r := mux.NewRouter()
	r.Use(withCORS(cfg.CORSOrigins))
	r.Use(withLogging(logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/datasets/{datasetId}", rest.GetDataset).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/sessions", rest.CreateSession).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/sessions/{id}", rest.GetSession).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/sessions/{id}", rest.DeleteSession).Methods(http.MethodDelete)
	v1.HandleFunc("/sessions/{id}/start", rest.Start).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/sessions/{id}/answers", rest.SubmitAnswer).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/sessions/{id}/filters/parties/{party:.+}/toggle", rest.ToggleParty).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/sessions/{id}/filters/topics/{topic:.+}/toggle", rest.ToggleTopic).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/sessions/{id}/result", rest.Result).Methods(http.MethodGet, http.MethodOptions)
	v1.HandleFunc("/sessions/{id}/chart.{ext:png|jpe?g}", rest.ChartImage).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/share", rest.Share).Methods(http.MethodPost, http.MethodOptions)

	return r
}
