package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"taskhub/metrics"
	"taskhub/models"
)

const (
	// sessionBuffer is how many notifications may queue for one session
	// before it is considered stalled and dropped.
	sessionBuffer = 16
	writeTimeout  = 5 * time.Second
)

// Conn is the slice of a websocket connection the hub writes to
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type session struct {
	conn Conn
	out  chan models.Notification
	done chan struct{}
	stop sync.Once
}

func (s *session) close() {
	s.stop.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// Hub fans persisted notifications out to the recipient's open sessions.
// Deliver only enqueues; each session has its own writer goroutine.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint]map[*session]struct{}
	log      *logrus.Entry
	timeout  time.Duration
}

func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		sessions: make(map[uint]map[*session]struct{}),
		log:      log,
		timeout:  writeTimeout,
	}
}

// Register adds a connection for userID and returns the function that
// removes it again.
func (h *Hub) Register(userID uint, conn Conn) func() {
	s := &session{
		conn: conn,
		out:  make(chan models.Notification, sessionBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*session]struct{})
	}
	h.sessions[userID][s] = struct{}{}
	h.mu.Unlock()
	metrics.WebsocketSessions.Inc()

	go h.pump(userID, s)

	return func() { h.remove(userID, s) }
}

func (h *Hub) pump(userID uint, s *session) {
	for {
		select {
		case <-s.done:
			return
		case n := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.timeout))
			if err := s.conn.WriteJSON(n); err != nil {
				h.log.WithError(err).WithField("user_id", userID).Debug("dropping websocket session")
				h.remove(userID, s)
				return
			}
		}
	}
}

func (h *Hub) remove(userID uint, s *session) {
	h.mu.Lock()
	if set, ok := h.sessions[userID]; ok {
		if _, ok := set[s]; ok {
			delete(set, s)
			metrics.WebsocketSessions.Dec()
		}
		if len(set) == 0 {
			delete(h.sessions, userID)
		}
	}
	h.mu.Unlock()
	s.close()
}

// Sessions reports how many connections userID has open
func (h *Hub) Sessions(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Deliver never blocks on a connection. A session whose queue is full is
// dropped.
func (h *Hub) Deliver(_ context.Context, n models.Notification) {
	h.mu.RLock()
	targets := make([]*session, 0, len(h.sessions[n.UserID]))
	for s := range h.sessions[n.UserID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		select {
		case s.out <- n:
		case <-s.done:
		default:
			h.log.WithField("user_id", n.UserID).Warn("websocket session stalled, dropping")
			h.remove(n.UserID, s)
		}
	}
}
