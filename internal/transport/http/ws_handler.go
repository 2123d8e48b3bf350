package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/domain"
)

// DefaultKeepAlive is how often an open connection refreshes its session.
const DefaultKeepAlive = 30 * time.Second

type WSHandler struct {
	service   *app.SurveyService
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	keepAlive time.Duration
}

func NewWSHandler(service *app.SurveyService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		service:   service,
		logger:    logger,
		keepAlive: DefaultKeepAlive,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Value int `json:"value"`
}

type partyPayload struct {
	Name string `json:"name"`
}

type topicPayload struct {
	Topic string `json:"topic"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades HTTP requests to websockets and drives one survey session.
// Every state change is pushed as "state", followed by "result" once the
// session reached the result page. While the connection is open the session
// is refreshed every keepAlive, so an idle viewer does not lose it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "session", sessionID, "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := h.service.State(ctx, sessionID); err != nil {
					h.logger.Debug("ws keepalive failed", "session", sessionID, "error", err)
				}
			case state, ok := <-updates:
				if !ok {
					// Session ended; unblock the reader.
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"), deadline())
					conn.Close()
					return
				}
				for _, msg := range h.stateMessages(ctx, state) {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.handle(ctx, sessionID, inbound); !ok {
			select {
			case send <- msg:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handle applies one inbound command. State changes reach the client through
// the subscription, so only failures produce a direct reply.
func (h *WSHandler) handle(ctx context.Context, sessionID string, in inboundMessage) (outboundMessage, bool) {
	var err error
	switch in.Type {
	case "start":
		_, err = h.service.Start(ctx, sessionID)
	case "answer":
		var payload answerPayload
		if json.Unmarshal(in.Payload, &payload) != nil {
			return errorMessage("invalid answer payload"), false
		}
		_, err = h.service.SubmitAnswer(ctx, sessionID, payload.Value)
	case "toggleParty":
		var payload partyPayload
		if json.Unmarshal(in.Payload, &payload) != nil {
			return errorMessage("invalid toggleParty payload"), false
		}
		_, err = h.service.ToggleParty(ctx, sessionID, payload.Name)
	case "toggleTopic":
		var payload topicPayload
		if json.Unmarshal(in.Payload, &payload) != nil {
			return errorMessage("invalid toggleTopic payload"), false
		}
		_, err = h.service.ToggleTopic(ctx, sessionID, payload.Topic)
	default:
		return errorMessage("unsupported message type"), false
	}
	if err != nil {
		return errorMessage(err.Error()), false
	}
	return outboundMessage{}, true
}

func (h *WSHandler) stateMessages(ctx context.Context, state domain.SessionState) []outboundMessage {
	msgs := []outboundMessage{{Type: "state", Payload: state}}
	if state.Phase != domain.PhaseResult {
		return msgs
	}
	view, err := h.service.Result(ctx, state.SessionID)
	if err != nil {
		h.logger.Warn("result unavailable", "session", state.SessionID, "error", err)
		return msgs
	}
	return append(msgs, outboundMessage{Type: "result", Payload: view})
}

func deadline() time.Time {
	return time.Now().Add(time.Second)
}
