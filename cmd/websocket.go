package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tallermatch/internal/models"
)

/********** timings **********/
const (
	writeDeadline = 5 * time.Second
	readDeadline  = 120 * time.Second
	readLimit     = 1 << 20 // 1 MB
)

/*****************************/

// RelayHub fans push envelopes out to connected UI shells so the screens
// get the same signal the engine consumed. All operations on clients
// happen only inside Run.
type RelayHub struct {
	clients    map[*websocket.Conn]struct{}
	broadcast  chan models.PushEnvelope
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
}

func NewRelayHub() *RelayHub {
	return &RelayHub{
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan models.PushEnvelope),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *RelayHub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = struct{}{}
			log.Printf("relay register, clients=%d", len(h.clients))

		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				_ = conn.Close()
				delete(h.clients, conn)
				log.Printf("relay unregister, clients=%d", len(h.clients))
			}

		case env := <-h.broadcast:
			for conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteJSON(env); err != nil {
					log.Printf("relay broadcast error: %v", err)
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
		}
	}
}

// Broadcast queues an envelope for every connected shell.
func (h *RelayHub) Broadcast(env models.PushEnvelope) {
	h.broadcast <- env
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true }, // localhost surface
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (app *application) RelayWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("relay upgrade error:", err)
		return
	}
	app.relayHub.register <- conn

	go func() {
		defer func() { app.relayHub.unregister <- conn }()
		conn.SetReadLimit(readLimit)
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
			// The shell only ever sends keepalive pings.
			if mt == websocket.TextMessage && strings.EqualFold(strings.TrimSpace(string(msg)), "ping") {
				_ = conn.WriteMessage(websocket.TextMessage, []byte("pong"))
			}
		}
	}()
}
