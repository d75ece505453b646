// Package live streams an engine to browser sessions over WebSocket.
//
// Each connection is a Session identified by a random UUID. The server pushes
// a frame whenever the engine's version changes (at most once per driver
// tick), a selection message when the selection changes, and error messages.
// Sessions send pointer, wheel and theme events, which are executed on the
// driver goroutine.
package live

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/render"
)

// Recorder receives live channel metrics. *metrics.Registry implements it.
type Recorder interface {
	RecordLiveMessage(direction, kind string)
	RecordLiveSessions(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordLiveMessage(string, string) {}
func (nopRecorder) RecordLiveSessions(int)           {}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Server) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithCheckOrigin overrides the WebSocket origin check. The default accepts
// same-host requests only.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// Server handles WebSocket connections for one engine.
type Server struct {
	driver   *engine.Driver
	eng      *engine.Engine
	upgrader websocket.Upgrader
	logger   *log.Logger
	recorder Recorder

	mu       sync.RWMutex
	sessions map[string]*Session
	reg      engine.Registration

	// Driver goroutine only.
	lastVersion uint64
	started     bool
	// owner is the session whose pointer is down.
	owner string
}

// NewServer creates a live server for eng, which must be driven by d.
func NewServer(d *engine.Driver, eng *engine.Engine, opts ...Option) *Server {
	s := &Server{
		driver: d,
		eng:    eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:   log.Default(),
		recorder: nopRecorder{},
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to engine changes. It is safe to call more than once.
func (s *Server) Start(ctx context.Context) error {
	return s.driver.Do(ctx, func() error {
		if s.started {
			return nil
		}
		s.started = true
		s.eng.OnSelect(s.broadcastSelection)
		reg := s.driver.Register(s.tick)
		s.mu.Lock()
		s.reg = reg
		s.mu.Unlock()
		return nil
	})
}

// Close unsubscribes from the driver and closes every session.
func (s *Server) Close() {
	s.mu.Lock()
	if s.reg != nil {
		s.reg.Unregister()
	}
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ServeHTTP upgrades the request and runs the session until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	sess := newSession(s, conn)
	s.add(sess)
	defer s.remove(sess)

	s.logger.Debug("live session opened", "session", sess.ID, "remote", r.RemoteAddr)
	go sess.writer()

	sess.send(TypeHello, ServerMessage{Type: TypeHello, Session: sess.ID})
	if err := s.driver.Do(r.Context(), func() error {
		f := s.eng.Frame()
		sess.send(TypeFrame, ServerMessage{Type: TypeFrame, Version: s.eng.Version(), Frame: &f})
		return nil
	}); err != nil {
		sess.sendError(err)
	}

	sess.reader(r.Context())
	s.logger.Debug("live session closed", "session", sess.ID)
}

// BroadcastError sends err to every session.
func (s *Server) BroadcastError(err error) {
	s.broadcast(TypeError, ServerMessage{Type: TypeError, Error: errorBody(err)})
}

func (s *Server) add(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	s.recorder.RecordLiveSessions(n)
}

func (s *Server) remove(sess *Session) {
	sess.Close()
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	n := len(s.sessions)
	s.mu.Unlock()
	s.recorder.RecordLiveSessions(n)

	// A pointer left down by a vanished client would keep its node pinned.
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	err := s.driver.Do(ctx, func() error {
		s.release(sess.ID)
		return nil
	})
	if err != nil && !errors.Is(err, errors.ErrCodeStopped) {
		s.logger.Warn("release gesture", "session", sess.ID, "err", err)
	}
}

// release cancels the gesture owned by id. Driver goroutine only.
func (s *Server) release(id string) {
	if s.owner != id {
		return
	}
	s.owner = ""
	s.eng.CancelGesture()
}

// tick pushes a frame when the engine changed since the last push.
func (s *Server) tick(time.Time) {
	if s.Sessions() == 0 {
		return
	}
	v := s.eng.Version()
	if v == s.lastVersion {
		return
	}
	s.lastVersion = v
	f := s.eng.Frame()
	s.broadcast(TypeFrame, ServerMessage{Type: TypeFrame, Version: v, Frame: &f})
}

func (s *Server) broadcastSelection(n *graph.Node) {
	s.broadcast(TypeSelection, ServerMessage{Type: TypeSelection, Node: n})
}

func (s *Server) broadcast(kind string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encode live message", "type", kind, "err", err)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		sess.enqueue(kind, data)
	}
}

// apply executes a message from session id. It runs on the driver goroutine.
// While one session holds the pointer, pointer input from the others is
// refused (down) or ignored (move, up).
func (s *Server) apply(id string, msg ClientMessage, now time.Time) error {
	e := s.eng
	if s.owner != "" && !e.Gesturing() {
		s.owner = ""
	}
	switch msg.Type {
	case TypePointerDown:
		if s.owner != "" && s.owner != id {
			return errors.New(errors.ErrCodeInvalidInput, "another session holds the pointer")
		}
		if err := e.PointerDown(msg.X, msg.Y, now); err != nil {
			return err
		}
		if e.Gesturing() {
			s.owner = id
		}
		return nil
	case TypePointerMove:
		if s.owner != "" && s.owner != id {
			return nil
		}
		return e.PointerMove(msg.X, msg.Y, now)
	case TypePointerUp:
		if s.owner != id {
			return nil
		}
		s.owner = ""
		return e.PointerUp(msg.X, msg.Y, now)
	case TypeWheel:
		factor := msg.Factor
		if factor == 0 {
			factor = math.Pow(2, -msg.DeltaY*0.002)
		}
		if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "invalid zoom factor %v", factor)
		}
		e.Wheel(msg.X, msg.Y, factor, now)
		return nil
	case TypeTheme:
		theme, err := render.ParseTheme(msg.Theme)
		if err != nil {
			return err
		}
		return e.SetTheme(theme)
	case TypeClear:
		e.ClearSelection()
		return nil
	case TypeSelect:
		if err := errors.ValidateNodeID(msg.ID); err != nil {
			return err
		}
		return e.Select(msg.ID)
	case TypeReset:
		e.ResetView()
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
}

func errorBody(err error) *ErrorBody {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return &ErrorBody{Code: string(code), Message: errors.UserMessage(err)}
}
