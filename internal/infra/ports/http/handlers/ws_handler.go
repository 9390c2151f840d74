package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
	"github.com/qrave1/RoomRelay/internal/usecase"
)

var errUnknownMessage = errors.New("unknown message type")

type WebSocketHandler struct {
	upgrader *websocket.Upgrader
	cfg      config.WebSocketConfig

	signalingUsecase usecase.SignalingUsecase
	wsRepo           memory.WebsocketConnectionRepository
}

func NewWebSocketHandler(
	cfg *config.Config,
	signalingUsecase usecase.SignalingUsecase,
	wsRepo memory.WebsocketConnectionRepository,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				origin := r.Header.Get("Origin")

				return origin == "" || origin == cfg.Domain
			},
		},
		cfg:              cfg.WebSocket,
		signalingUsecase: signalingUsecase,
		wsRepo:           wsRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("websocket upgrade", slog.Any(constant.Error, err))
		return nil
	}

	client := newWSClient(ws, h.cfg)
	h.wsRepo.Add(client)

	go client.writePump()

	// запрос уже захвачен, его контекст нам не нужен после выхода из обработчика
	ctx := context.WithoutCancel(c.Request().Context())

	defer func() {
		h.signalingUsecase.HandleDisconnect(ctx, client.ID())
		h.wsRepo.Remove(client.ID())
		client.Close()
	}()

	h.readPump(ctx, client)

	return nil
}

func (h *WebSocketHandler) readPump(ctx context.Context, client *wsClient) {
	ws := client.conn

	ws.SetReadLimit(h.cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read", slog.Any(constant.Error, err))
			}

			return
		}

		var msg events.Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			h.replyError(client, "invalid message")
			continue
		}

		if err = h.handleMessage(ctx, client, msg); err != nil {
			h.reportError(client, msg.Type, err)
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, client *wsClient, msg events.Message) error {
	switch msg.Type {
	case events.TypeJoinRoom:
		var event events.JoinRoomEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return fmt.Errorf("unmarshal join event: %w", err)
		}

		return h.signalingUsecase.HandleJoin(ctx, client, event)

	case events.TypeLeaveRoom:
		return h.signalingUsecase.HandleLeave(ctx, client.ID())

	case events.TypeSignal:
		var event events.SignalEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return fmt.Errorf("unmarshal signal: %w", err)
		}

		return h.signalingUsecase.HandleSignal(ctx, client.ID(), event)

	case events.TypeSpeakingStatus,
		events.TypeAgentSpeaking,
		events.TypeSessionPhaseUpdate,
		events.TypeRelationshipTypeUpdate:
		return h.signalingUsecase.HandleForward(ctx, client.ID(), msg.Type, msg.Data)

	case events.TypePing:
		client.Send(events.Message{Type: events.TypePong})
		return nil

	default:
		return errUnknownMessage
	}
}

// reportError отправляет ошибку только тому, кто прислал сообщение
func (h *WebSocketHandler) reportError(client *wsClient, msgType events.Type, err error) {
	slog.Warn(
		"handle websocket message",
		slog.String(constant.SessionID, client.ID().String()),
		slog.String(constant.EventType, string(msgType)),
		slog.Any(constant.Error, err),
	)

	h.replyError(client, wsErrorMessage(err))
}

func (h *WebSocketHandler) replyError(client *wsClient, text string) {
	msg, err := events.New(events.TypeError, events.ErrorEvent{Message: text})
	if err != nil {
		return
	}

	client.Send(msg)
}

func wsErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, domain.ErrRoomClosed):
		return "Room is closing"
	case errors.Is(err, domain.ErrSessionInvalid):
		return "Invalid room membership"
	case errors.Is(err, domain.ErrInvalidRole):
		return "Invalid user type"
	case errors.Is(err, domain.ErrNotInRoom), errors.Is(err, domain.ErrSenderNotInRoom):
		return "Not in a room"
	case errors.Is(err, domain.ErrTargetNotFound):
		return "Target user not found"
	case errors.Is(err, errUnknownMessage):
		return "Unknown message type"
	default:
		return "Failed to process message"
	}
}
