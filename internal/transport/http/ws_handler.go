package http

import (
	"net/http"
	"time"

	"character-match-service/internal/app"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler streams a session's progress events over a websocket.
type WSHandler struct {
	sessions *app.SessionService
	events   *app.EventHub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(sessions *app.SessionService, events *app.EventHub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		events:   events,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades GET /ws?session_id=... and forwards events until the
// client goes away. Inbound messages are ignored.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}
	if _, err := h.sessions.Get(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.events.Subscribe(sessionID)
	defer cancel()

	if err := conn.WriteJSON(app.Event{Type: app.EventSubscribed, SessionID: sessionID, At: time.Now().UTC()}); err != nil {
		return
	}

	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	// Single writer: only this goroutine touches conn for writes from here on.
	go func() {
		defer close(writerDone)
		for {
			select {
			case event, ok := <-updates:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					h.logger.Debug("ws write error", zap.Error(err))
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-writerDone
}
