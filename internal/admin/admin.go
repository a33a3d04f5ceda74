// Package admin exposes a read-only view of the protocol core over HTTP:
// a JSON status snapshot and a websocket stream of the same events the
// command log emits for its own diagnostics. Neither can publish a
// command or otherwise touch the protocol lock beyond the brief,
// already-exposed read accessors on commandlog.Log.
package admin

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"distmaster/internal/commandlog"
)

// Server is the admin HTTP surface: a status endpoint and a websocket
// event feed, backed by the same Log the protocol core mutates.
type Server struct {
	log    *commandlog.Log
	engine *gin.Engine

	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[chan commandlog.Event]struct{}
}

// New builds an admin server reading from log. Incoming events (as
// produced by commandlog.Log when constructed with a non-nil events
// channel) should be forwarded to Broadcast by the caller.
func New(log *commandlog.Log) *Server {
	s := &Server{
		log:  log,
		subs: make(map[chan commandlog.Event]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/status", s.handleStatus)
	r.GET("/events", s.handleEvents)
	s.engine = r
	return s
}

// Handler returns the HTTP handler to mount or serve directly.
func (s *Server) Handler() http.Handler { return s.engine }

type statusResponse struct {
	ActiveSlaves int    `json:"active_slaves"`
	ReplyCount   int    `json:"reply_count"`
	CurrentID    int    `json:"current_id"`
	Counter      uint64 `json:"commands_published"`
}

func (s *Server) handleStatus(c *gin.Context) {
	s.log.Lock()
	resp := statusResponse{
		ActiveSlaves: s.log.ActiveSlaves(),
		ReplyCount:   s.log.ReplyCount(),
		CurrentID:    s.log.CurrentID(),
		Counter:      s.log.Counter(),
	}
	s.log.Unlock()
	c.JSON(http.StatusOK, resp)
}

// Broadcast fans an event out to every connected websocket subscriber.
// Safe to call from any goroutine; never blocks on a slow reader since
// each subscriber has its own buffered channel and is dropped if it
// falls behind.
func (s *Server) Broadcast(ev commandlog.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Server) handleEvents(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := make(chan commandlog.Event, 32)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
