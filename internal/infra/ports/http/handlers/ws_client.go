package handlers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/domain/events"
)

// wsClient - одно websocket соединение. Пишет в сокет только writePump,
// остальные ставят сообщения в очередь send.
type wsClient struct {
	id   uuid.UUID
	conn *websocket.Conn
	cfg  config.WebSocketConfig

	// send никогда не закрывается: запись после Close просто отбрасывается
	send chan events.Message
	done chan struct{}

	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, cfg config.WebSocketConfig) *wsClient {
	return &wsClient{
		id:   uuid.New(),
		conn: conn,
		cfg:  cfg,
		send: make(chan events.Message, cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

func (c *wsClient) ID() uuid.UUID { return c.id }

func (c *wsClient) Send(msg events.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		// клиент не успевает читать, держать его бессмысленно
		slog.Warn("websocket send buffer full", slog.String(constant.SessionID, c.id.String()))
		c.Close()

		return false
	}
}

func (c *wsClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump единственный пишет в соединение
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				slog.Debug("websocket write", slog.String(constant.SessionID, c.id.String()), slog.Any(constant.Error, err))
				c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.flush()

			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			_ = c.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)

			return
		}
	}
}

// flush дописывает то, что успели поставить в очередь до закрытия (например room-closed)
func (c *wsClient) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *wsClient) write(msg events.Message) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(msg)
}
