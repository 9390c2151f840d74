package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/application/metric"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/domain/runtime"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
)

// SignalingUsecase обслуживает websocket-сессии: вход в комнату, выход и пересылку сообщений
type SignalingUsecase interface {
	HandleJoin(ctx context.Context, conn runtime.Outbound, event events.JoinRoomEvent) error
	HandleLeave(ctx context.Context, connID uuid.UUID) error
	HandleDisconnect(ctx context.Context, connID uuid.UUID)

	HandleSignal(ctx context.Context, connID uuid.UUID, event events.SignalEvent) error
	HandleForward(ctx context.Context, connID uuid.UUID, msgType events.Type, data json.RawMessage) error

	// Relay пересылает сигнал второму участнику комнаты без разбора payload
	Relay(ctx context.Context, roomID string, envelope runtime.SignalEnvelope) error
}

type signalingUsecase struct {
	locks *RoomLocks

	rooms    memory.RoomRepository
	sessions memory.SessionRepository

	presence PresenceUsecase
	eviction EvictionUsecase

	leaveGrace time.Duration
}

func NewSignalingUsecase(
	locks *RoomLocks,
	rooms memory.RoomRepository,
	sessions memory.SessionRepository,
	presence PresenceUsecase,
	eviction EvictionUsecase,
	leaveGrace time.Duration,
) SignalingUsecase {
	return &signalingUsecase{
		locks:      locks,
		rooms:      rooms,
		sessions:   sessions,
		presence:   presence,
		eviction:   eviction,
		leaveGrace: leaveGrace,
	}
}

func (s *signalingUsecase) HandleJoin(ctx context.Context, conn runtime.Outbound, event events.JoinRoomEvent) error {
	if event.RoomID == "" || event.UserID == "" {
		return fmt.Errorf("%w: roomId and userId are required", domain.ErrSessionInvalid)
	}

	role, err := models.ParseRole(event.UserType)
	if err != nil {
		return err
	}

	// соединение может состоять только в одной комнате
	if prev, ok := s.sessions.Get(conn.ID()); ok && (prev.RoomID != event.RoomID || prev.UserID != event.UserID) {
		s.leaveSession(prev)
	}

	unlock := s.locks.Lock(event.RoomID)
	defer unlock()

	if role == "" {
		room, err := s.rooms.Get(event.RoomID)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
		}

		role, _ = room.RoleOf(event.UserID)
	}

	session, err := s.sessions.Register(event.RoomID, event.UserID, role, conn)
	if err != nil {
		return err
	}

	s.eviction.Cancel(event.RoomID)

	if err = s.rooms.Touch(event.RoomID); err != nil {
		return fmt.Errorf("touch room: %w", err)
	}

	snapshot, err := s.presence.Snapshot(event.RoomID)
	if err != nil {
		return fmt.Errorf("room snapshot: %w", err)
	}

	joined, err := events.New(events.TypeJoinedRoom, events.JoinedRoomEvent{
		RoomID:    session.RoomID,
		UserID:    session.UserID,
		UserType:  string(session.Role),
		UserCount: snapshot.UserCount,
		IsReady:   snapshot.IsReady,
		Room:      snapshot,
	})
	if err != nil {
		return err
	}

	deliver(session, joined)

	slog.Info(
		"session joined room",
		slog.String(constant.RoomID, session.RoomID),
		slog.String(constant.UserID, session.UserID),
		slog.String(constant.Role, string(session.Role)),
	)

	return s.presence.Broadcast(event.RoomID)
}

func (s *signalingUsecase) HandleLeave(ctx context.Context, connID uuid.UUID) error {
	session, ok := s.sessions.Get(connID)
	if !ok {
		return domain.ErrNotInRoom
	}

	s.leaveSession(session)

	return nil
}

// HandleDisconnect - обрыв соединения обрабатывается так же, как leave-room
func (s *signalingUsecase) HandleDisconnect(ctx context.Context, connID uuid.UUID) {
	session, ok := s.sessions.Get(connID)
	if !ok {
		return
	}

	s.leaveSession(session)
}

// leaveSession снимает сессию и освобождает роль, если у пользователя не осталось других соединений
func (s *signalingUsecase) leaveSession(session runtime.Session) {
	empty := s.releaseSession(session)

	if empty {
		s.eviction.Schedule(session.RoomID, s.leaveGrace, models.ReasonEmpty)
	}
}

func (s *signalingUsecase) releaseSession(session runtime.Session) (empty bool) {
	unlock := s.locks.Lock(session.RoomID)
	defer unlock()

	if _, ok := s.sessions.Unregister(session.ID); !ok {
		return false
	}

	stillConnected := lo.ContainsBy(s.sessions.InRoom(session.RoomID), func(other runtime.Session) bool {
		return other.UserID == session.UserID
	})

	if !stillConnected {
		_, err := s.rooms.Leave(session.RoomID, session.UserID)
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			dropOrphanSessions(s.sessions, session.RoomID)
			return false
		case errors.Is(err, domain.ErrUserNotInRoom):
			// роль уже освобождена через REST
		case err != nil:
			slog.Error("leave room", slog.String(constant.RoomID, session.RoomID), slog.Any(constant.Error, err))
		}
	}

	slog.Info(
		"session left room",
		slog.String(constant.RoomID, session.RoomID),
		slog.String(constant.UserID, session.UserID),
	)

	if err := s.presence.Broadcast(session.RoomID); err != nil {
		slog.Error("broadcast presence", slog.String(constant.RoomID, session.RoomID), slog.Any(constant.Error, err))
	}

	room, err := s.rooms.Get(session.RoomID)
	if err != nil {
		return false
	}

	return room.Occupancy() == 0
}

func (s *signalingUsecase) HandleSignal(ctx context.Context, connID uuid.UUID, event events.SignalEvent) error {
	session, ok := s.sessions.Get(connID)
	if !ok {
		return domain.ErrNotInRoom
	}

	return s.Relay(ctx, session.RoomID, runtime.SignalEnvelope{
		SenderUserID: session.UserID,
		TargetUserID: event.TargetUserID,
		Payload:      event.Signal,
	})
}

func (s *signalingUsecase) Relay(ctx context.Context, roomID string, envelope runtime.SignalEnvelope) error {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	if _, err := s.rooms.Get(roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			dropOrphanSessions(s.sessions, roomID)
			return nil
		}

		return fmt.Errorf("get room: %w", err)
	}

	sessions := s.sessions.InRoom(roomID)

	if !lo.ContainsBy(sessions, func(session runtime.Session) bool {
		return session.UserID == envelope.SenderUserID
	}) {
		return domain.ErrSenderNotInRoom
	}

	// себе сигнал не отправляется
	if envelope.TargetUserID != "" && envelope.TargetUserID == envelope.SenderUserID {
		return domain.ErrTargetNotFound
	}

	recipients := lo.Filter(sessions, func(session runtime.Session, _ int) bool {
		if envelope.TargetUserID != "" {
			return session.UserID == envelope.TargetUserID
		}

		return session.UserID != envelope.SenderUserID
	})

	if envelope.TargetUserID != "" && len(recipients) == 0 {
		return domain.ErrTargetNotFound
	}

	// активностью считается только принятый сигнал
	if err := s.rooms.Touch(roomID); err != nil {
		return fmt.Errorf("touch room: %w", err)
	}

	msg, err := events.New(events.TypeSignal, events.SignalForwardEvent{
		UserID: envelope.SenderUserID,
		Signal: envelope.Payload,
	})
	if err != nil {
		return err
	}

	for _, recipient := range recipients {
		deliver(recipient, msg)
	}

	metric.IncRelayed(string(events.TypeSignal))

	return nil
}

func (s *signalingUsecase) HandleForward(
	ctx context.Context,
	connID uuid.UUID,
	msgType events.Type,
	data json.RawMessage,
) error {
	outType, ok := events.ForwardedAs(msgType)
	if !ok {
		return fmt.Errorf("unsupported event type %q", msgType)
	}

	session, ok := s.sessions.Get(connID)
	if !ok {
		return domain.ErrNotInRoom
	}

	msg := events.Message{Type: outType, Data: data}

	// speaking-status дополняется отправителем, остальные события пересылаются как есть
	if msgType == events.TypeSpeakingStatus {
		var status events.SpeakingStatusEvent
		if err := json.Unmarshal(data, &status); err != nil {
			return fmt.Errorf("decode %s: %w", msgType, err)
		}

		var err error
		msg, err = events.New(outType, events.UserSpeakingEvent{
			UserID:   session.UserID,
			UserType: string(session.Role),
			Speaking: status.Speaking,
		})
		if err != nil {
			return err
		}
	}

	unlock := s.locks.Lock(session.RoomID)
	defer unlock()

	if err := s.rooms.Touch(session.RoomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			dropOrphanSessions(s.sessions, session.RoomID)
			return nil
		}

		return fmt.Errorf("touch room: %w", err)
	}

	for _, other := range s.sessions.InRoom(session.RoomID) {
		if other.UserID == session.UserID {
			continue
		}

		deliver(other, msg)
	}

	metric.IncRelayed(string(msgType))

	return nil
}
