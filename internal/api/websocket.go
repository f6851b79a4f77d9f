package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/veigaco/biomarket-cas/pkg/wire"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection, sends the labeled initial
// snapshot, then relays every subsequent broadcast until the client
// disconnects or falls behind and is dropped.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	ch, unsubscribe := s.scheduler.Subscribe()
	s.met.SetPushSubscribers(s.subscriberDelta(1))

	s.log.Info("push subscriber connected", zap.String("connId", connID), zap.String("remote", r.RemoteAddr))

	client := &wsClient{conn: conn, log: s.log, done: make(chan struct{})}
	defer func() {
		unsubscribe()
		s.met.SetPushSubscribers(s.subscriberDelta(-1))
		conn.Close()
		s.log.Info("push subscriber disconnected", zap.String("connId", connID))
	}()

	initial := wire.ToSnapshot(s.eng.Snapshot(), "initial")
	if err := client.send(initial); err != nil {
		return
	}

	go client.readPump()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := client.send(wire.ToSnapshot(snap, "update")); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.done:
			return
		}
	}
}

// wsClient wraps one connection. readPump only exists to observe
// disconnects and pong keepalives; this server never expects client-sent
// commands over the push channel.
type wsClient struct {
	conn *websocket.Conn
	log  *zap.Logger
	done chan struct{}
}

func (c *wsClient) send(v any) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *wsClient) readPump() {
	defer close(c.done)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
