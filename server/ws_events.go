package server

import (
	"net/http"
	"time"

	"AutoDJ/core/mixjob"
	"AutoDJ/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MixEventsHandler streams status transitions for one mix over a WebSocket.
// The current status is sent immediately; the connection closes after a
// terminal status is delivered.
func (h *APIHandler) MixEventsHandler(w http.ResponseWriter, r *http.Request) {
	mixID := mux.Vars(r)["id"]

	// Subscribe before reading the current status so a transition between
	// the two can't be missed.
	events, cancel := h.runner.Broker().Subscribe(mixID)
	defer cancel()

	mix, err := h.mixRepo.GetMixByID(mixID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load mix")
		return
	}
	if mix == nil {
		respondError(w, http.StatusNotFound, "mix not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	current := mixjob.StatusEvent{MixID: mix.ID, Status: mix.Status}
	if err := conn.WriteJSON(current); err != nil {
		return
	}
	if mix.Status.Terminal() {
		return
	}

	for {
		select {
		case ev := <-events:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Status.Terminal() {
				return
			}
		case <-r.Context().Done():
			return
		case <-time.After(30 * time.Second):
			// Keepalive so intermediaries don't drop an idle connection
			// while a long mix is processing.
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
