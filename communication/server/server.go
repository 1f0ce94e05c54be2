package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"threes/board"
	"threes/communication"
	"threes/gamemaster"
)

type Option func(s *Server)

// WithBoard starts every session on b instead of a generated board.
func WithBoard(b board.Board) Option {
	return func(s *Server) {
		s.start = b
	}
}

// WithSeed makes sessions reproducible: the n-th session opened is seeded
// with seed+n.
func WithSeed(seed uint64) Option {
	return func(s *Server) {
		s.seed = &seed
	}
}

// Server hosts one game session per websocket connection.
type Server struct {
	router   chi.Router
	upgrader websocket.Upgrader
	start    board.Board
	seed     *uint64

	mu       sync.Mutex
	opened   uint64
	sessions map[string]*gamemaster.Local
}

func New(options ...Option) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		sessions: map[string]*gamemaster.Local{},
	}
	for _, option := range options {
		option(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().Str("addr", addr).Msg("serving game sessions")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "sessions": s.Sessions()})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id, session := s.open()
	defer s.close(id)
	logger := log.With().Str("session", id).Logger()
	logger.Info().Msg("session opened")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("session read failed")
			}
			logger.Info().Msg("session closed")
			return
		}

		var req communication.Request
		var reply communication.Reply
		if err := json.Unmarshal(message, &req); err != nil {
			reply = communication.Reply{Error: fmt.Sprintf("malformed request: %v", err)}
		} else {
			reply = handle(r.Context(), session, req)
		}
		logger.Debug().Str("id", req.ID).Str("type", string(req.Kind)).Str("error", reply.Error).Msg("request")

		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn().Err(err).Msg("session write failed")
			return
		}
	}
}

func (s *Server) open() (string, *gamemaster.Local) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var seed uint64
	if s.seed != nil {
		seed = *s.seed + s.opened
	} else {
		seed = frand.Uint64n(math.MaxUint64)
	}
	s.opened++

	id := uuid.NewString()
	session := gamemaster.NewLocalWithBoard(s.start, rand.New(rand.NewSource(seed)))
	s.sessions[id] = session
	return id, session
}

func (s *Server) close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// handle answers one request against backend.
func handle(ctx context.Context, backend gamemaster.Backend, req communication.Request) communication.Reply {
	reply := communication.Reply{ID: req.ID}
	var err error
	switch req.Kind {
	case communication.GetBoard:
		var b board.Board
		b, err = backend.Board(ctx)
		reply.Board = b.Flat()
	case communication.GetNextTile:
		reply.Tile, err = backend.NextTile(ctx)
	case communication.MakeMove:
		var d board.Direction
		d, err = board.ParseDirection(req.Direction)
		if err == nil {
			err = backend.MakeMove(ctx, d)
		}
	case communication.GetState:
		var state gamemaster.State
		state, err = backend.State(ctx)
		reply.State = state.String()
	case communication.Restart:
		err = backend.Restart(ctx)
	default:
		err = fmt.Errorf("unknown request type %q", req.Kind)
	}
	if err != nil {
		return communication.Reply{ID: req.ID, Error: err.Error()}
	}
	return reply
}
