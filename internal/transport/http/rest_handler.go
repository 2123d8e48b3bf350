package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/domain"
)

// RESTHandler exposes the survey use cases as JSON endpoints.
type RESTHandler struct {
	service *app.SurveyService
	logger  *slog.Logger
}

func NewRESTHandler(service *app.SurveyService, logger *slog.Logger) *RESTHandler {
	return &RESTHandler{service: service, logger: logger}
}

type createSessionRequest struct {
	DatasetID string `json:"datasetId"`
}

type answerRequest struct {
	Value int `json:"value"`
}

type shareRequest struct {
	Platforms []string `json:"platforms"`
}

func (h *RESTHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Dataset(r.Context(), mux.Vars(r)["datasetId"])
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *RESTHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	state, err := h.service.CreateSession(r.Context(), req.DatasetID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *RESTHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), mux.Vars(r)["id"])
	h.respond(w, state, err)
}

func (h *RESTHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EndSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Start(r.Context(), mux.Vars(r)["id"])
	h.respond(w, state, err)
}

func (h *RESTHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid answer payload")
		return
	}
	state, err := h.service.SubmitAnswer(r.Context(), mux.Vars(r)["id"], req.Value)
	h.respond(w, state, err)
}

func (h *RESTHandler) ToggleParty(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.service.ToggleParty(r.Context(), vars["id"], vars["party"])
	h.respond(w, state, err)
}

func (h *RESTHandler) ToggleTopic(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.service.ToggleTopic(r.Context(), vars["id"], vars["topic"])
	h.respond(w, state, err)
}

func (h *RESTHandler) Result(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Result(r.Context(), mux.Vars(r)["id"])
	h.respond(w, view, err)
}

func (h *RESTHandler) ChartImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	format, err := domain.ParseImageFormat(vars["ext"])
	if err != nil {
		h.fail(w, err)
		return
	}
	img, err := h.service.ExportImage(r.Context(), vars["id"], format)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", img.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

func (h *RESTHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	platforms := make([]domain.SharePlatform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		p, err := domain.ParseSharePlatform(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unsupported platform: "+raw)
			return
		}
		platforms = append(platforms, p)
	}
	result, err := h.service.Share(r.Context(), mux.Vars(r)["id"], platforms)
	h.respond(w, result, err)
}

func (h *RESTHandler) respond(w http.ResponseWriter, body any, err error) {
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *RESTHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAnswerOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrWrongPhase), errors.Is(err, domain.ErrSurveyIncomplete):
		return http.StatusConflict
	case errors.Is(err, domain.ErrShareFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnsupportedFormat), errors.Is(err, domain.ErrUnsupportedPlatform):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
