package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/domain/runtime"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
)

// PresenceUsecase рассылает состояние комнаты всем её сессиям.
// Вызывающий держит блокировку комнаты, иначе порядок событий у клиентов не гарантирован.
type PresenceUsecase interface {
	Snapshot(roomID string) (events.RoomSnapshot, error)
	Broadcast(roomID string) error
}

type presenceUsecase struct {
	rooms    memory.RoomRepository
	sessions memory.SessionRepository
}

func NewPresenceUsecase(rooms memory.RoomRepository, sessions memory.SessionRepository) PresenceUsecase {
	return &presenceUsecase{rooms: rooms, sessions: sessions}
}

func (p *presenceUsecase) Snapshot(roomID string) (events.RoomSnapshot, error) {
	room, err := p.rooms.Get(roomID)
	if err != nil {
		return events.RoomSnapshot{}, err
	}

	return buildSnapshot(room, p.sessions.InRoom(roomID)), nil
}

func (p *presenceUsecase) Broadcast(roomID string) error {
	room, err := p.rooms.Get(roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		dropOrphanSessions(p.sessions, roomID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}

	sessions := p.sessions.InRoom(roomID)

	msg, err := events.New(events.TypeRoomUpdated, buildSnapshot(room, sessions))
	if err != nil {
		return err
	}

	for _, session := range sessions {
		deliver(session, msg)
	}

	return nil
}

// buildSnapshot: состав и готовность берутся из реестра, connected - из справочника сессий
func buildSnapshot(room models.Room, sessions []runtime.Session) events.RoomSnapshot {
	users := make([]events.UserSnapshot, 0, models.MaxOccupancy)

	for _, role := range []models.Role{models.RoleHost, models.RoleParticipant} {
		userID := room.Holder(role)
		if userID == "" {
			continue
		}

		joinedAt := room.HostJoinedAt
		if role == models.RoleParticipant {
			joinedAt = room.ParticipantJoinedAt
		}

		users = append(users, events.UserSnapshot{
			ID:       userID,
			UserType: string(role),
			JoinedAt: joinedAt,
			Connected: lo.ContainsBy(sessions, func(s runtime.Session) bool {
				return s.UserID == userID
			}),
		})
	}

	return events.RoomSnapshot{
		RoomID:    room.ID,
		Status:    string(room.Status),
		UserCount: room.Occupancy(),
		IsReady:   room.IsReady(),
		Users:     users,
	}
}

// dropOrphanSessions убирает сессии комнаты, которой уже нет в реестре. Пользователю не сообщается.
func dropOrphanSessions(sessions memory.SessionRepository, roomID string) {
	removed := sessions.UnregisterRoom(roomID)
	if len(removed) == 0 {
		return
	}

	slog.Warn(
		"drop sessions of missing room",
		slog.String(constant.RoomID, roomID),
		slog.Int(constant.Count, len(removed)),
		slog.Any(constant.Error, domain.ErrRegistryInconsistency),
	)
}
