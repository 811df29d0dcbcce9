// Package ws is the realtime transport: JSON event frames over a websocket,
// room-addressed by session identifier so answers reach only the session that
// asked.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deepcosmos1/LLM-RAG/internal/session"
)

const (
	EventJoin        = "join"
	EventUserMessage = "user_message"
	EventSetUserID   = "set_user_id"
	EventBotResponse = "bot_response"
	EventBotError    = "bot_error"
)

// Event is the wire envelope for every frame in both directions.
type Event struct {
	Event  string `json:"event"`
	UserID string `json:"user_id,omitempty"`
	Data   string `json:"data,omitempty"`
}

// Exchanger runs one full question-to-answer exchange for a session.
type Exchanger interface {
	Exchange(ctx context.Context, sessionID, question string) (string, error)
}

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(ev)
}

// Server upgrades websocket connections, generates session identifiers and
// routes exchanges through the pipeline. Messages are handled one at a time
// per connection, so a single client cannot race its own history appends.
type Server struct {
	addr      string
	exchanger Exchanger
	upgrader  websocket.Upgrader
	server    *http.Server
	startTime time.Time

	mu    sync.Mutex
	rooms map[string]map[*conn]struct{}
}

func NewServer(addr string, exchanger Exchanger, allowedOrigins []string) *Server {
	s := &Server{
		addr:      addr,
		exchanger: exchanger,
		rooms:     make(map[string]map[*conn]struct{}),
		startTime: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return s
}

func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

// Handler exposes the route table; Start serves it, tests mount it directly.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/status", s.handleStatus)
	return mux
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		IdleTimeout: 60 * time.Second,
	}
	log.Printf("🌐 Starting telemetry chat server on %s", s.addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	c := &conn{ws: wsConn}
	defer s.dropConn(c)
	defer wsConn.Close()

	sessionID := session.NewID()
	s.joinRoom(sessionID, c)
	if err := c.send(Event{Event: EventSetUserID, UserID: sessionID}); err != nil {
		log.Printf("failed to send session id: %v", err)
		return
	}
	log.Printf("🔌 Client connected with session %s", sessionID)

	for {
		var ev Event
		if err := wsConn.ReadJSON(&ev); err != nil {
			log.Printf("🔌 Client disconnected (session %s): %v", sessionID, err)
			return
		}
		switch ev.Event {
		case EventJoin:
			// Reconnect/multi-tab: attach this connection to an existing
			// session's room. Unknown ids are not validated, joining them is
			// a silent no-op from the client's perspective.
			if ev.UserID != "" {
				s.joinRoom(ev.UserID, c)
				log.Printf("👥 Session %s joined its room", ev.UserID)
			}
		case EventUserMessage:
			s.handleUserMessage(r.Context(), ev)
		default:
			log.Printf("unknown event %q from session %s", ev.Event, sessionID)
		}
	}
}

func (s *Server) handleUserMessage(ctx context.Context, ev Event) {
	if ev.UserID == "" {
		return
	}
	log.Printf("💬 Session %s: %q", ev.UserID, ev.Data)

	answer, err := s.exchanger.Exchange(ctx, ev.UserID, ev.Data)
	if err != nil {
		log.Printf("❌ Exchange failed for session %s: %v", ev.UserID, err)
		s.emit(ev.UserID, Event{Event: EventBotError, Data: "Sorry, something went wrong. Please try again."})
		return
	}
	s.emit(ev.UserID, Event{Event: EventBotResponse, Data: answer})
}

// emit delivers an event to every connection in one session's room and never
// to any other room.
func (s *Server) emit(sessionID string, ev Event) {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.rooms[sessionID]))
	for c := range s.rooms[sessionID] {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.send(ev); err != nil {
			log.Printf("failed to deliver %s to session %s: %v", ev.Event, sessionID, err)
		}
	}
}

func (s *Server) joinRoom(sessionID string, c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[sessionID]
	if !ok {
		room = make(map[*conn]struct{})
		s.rooms[sessionID] = room
	}
	room[c] = struct{}{}
}

func (s *Server) dropConn(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, room := range s.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(s.rooms, id)
		}
	}
}
