package client

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"meetsync/models"
)

const (
	defaultReconnectDelay = 5 * time.Second
	defaultHeartbeat      = 4 * time.Second
	controlWriteWait      = 5 * time.Second
)

// Subscription is the long-lived per-identity push channel. It holds one
// websocket connection at a time, sends periodic pings, and redials with
// a fixed delay after any connection failure. Decoded messages are
// delivered on Messages; a malformed frame is dropped, never fatal.
type Subscription struct {
	url            string
	token          string
	reconnectDelay time.Duration
	heartbeat      time.Duration
	logger         *zap.Logger

	messages  chan models.PushMessage
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	conn *websocket.Conn
}

// Subscribe opens the push channel and starts its connection loop.
func Subscribe(wsURL, token string, reconnectDelay, heartbeat time.Duration, logger *zap.Logger) *Subscription {
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Subscription{
		url:            wsURL,
		token:          token,
		reconnectDelay: reconnectDelay,
		heartbeat:      heartbeat,
		logger:         logger,
		messages:       make(chan models.PushMessage, 16),
		done:           make(chan struct{}),
	}
	go s.run()
	return s
}

// Messages is the stream of decoded push events. It is closed when the
// subscription shuts down.
func (s *Subscription) Messages() <-chan models.PushMessage {
	return s.messages
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
	})
}

func (s *Subscription) run() {
	defer close(s.messages)
	for {
		select {
		case <-s.done:
			return
		default:
		}

		header := http.Header{"Authorization": []string{"Bearer " + s.token}}
		conn, resp, err := websocket.DefaultDialer.Dial(s.url, header)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			s.logger.Warn("push: dial failed", zap.String("url", s.url), zap.Int("status", status), zap.Error(err))
		} else {
			s.mu.Lock()
			s.conn = conn
			s.mu.Unlock()
			s.logger.Info("push: connected", zap.String("url", s.url))

			s.readLoop(conn)

			s.mu.Lock()
			s.conn = nil
			s.mu.Unlock()
			conn.Close()
		}

		select {
		case <-s.done:
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Subscription) readLoop(conn *websocket.Conn) {
	pongWait := 2 * s.heartbeat
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go s.pingLoop(conn, stop)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Warn("push: connection lost", zap.Error(err))
			}
			return
		}

		var msg models.PushMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("push: dropping malformed frame", zap.Error(err))
			continue
		}
		if !msg.Action.Known() {
			s.logger.Warn("push: dropping frame with unknown action", zap.String("action", string(msg.Action)))
			continue
		}

		select {
		case s.messages <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *Subscription) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(controlWriteWait)); err != nil {
				return
			}
		case <-stop:
			return
		case <-s.done:
			return
		}
	}
}
