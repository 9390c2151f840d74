package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
)

type RoomUsecase interface {
	CreateRoom(ctx context.Context) (models.Room, error)
	GetRoom(ctx context.Context, id string) (models.Room, error)
	ListRooms(ctx context.Context) []models.Room
	DeleteRoom(ctx context.Context, id string) error

	JoinRoom(ctx context.Context, id string, role models.Role) (memory.JoinResult, error)
	LeaveRoom(ctx context.Context, id, userID string) (models.Room, error)
}

type roomUsecase struct {
	locks *RoomLocks

	rooms    memory.RoomRepository
	sessions memory.SessionRepository

	presence PresenceUsecase
	eviction EvictionUsecase

	leaveGrace time.Duration
}

func NewRoomUsecase(
	locks *RoomLocks,
	rooms memory.RoomRepository,
	sessions memory.SessionRepository,
	presence PresenceUsecase,
	eviction EvictionUsecase,
	leaveGrace time.Duration,
) RoomUsecase {
	return &roomUsecase{
		locks:      locks,
		rooms:      rooms,
		sessions:   sessions,
		presence:   presence,
		eviction:   eviction,
		leaveGrace: leaveGrace,
	}
}

func (uc *roomUsecase) CreateRoom(ctx context.Context) (models.Room, error) {
	room, err := uc.rooms.Create()
	if err != nil {
		return models.Room{}, fmt.Errorf("create room: %w", err)
	}

	slog.Info("room created", slog.String(constant.RoomID, room.ID))

	return room, nil
}

// GetRoom не считается активностью
func (uc *roomUsecase) GetRoom(ctx context.Context, id string) (models.Room, error) {
	return uc.rooms.Get(id)
}

func (uc *roomUsecase) ListRooms(ctx context.Context) []models.Room {
	return uc.rooms.List()
}

func (uc *roomUsecase) DeleteRoom(ctx context.Context, id string) error {
	if _, err := uc.rooms.Get(id); err != nil {
		return err
	}

	if !uc.eviction.Evict(ctx, id, models.ReasonDeleted) {
		// комнату могли закрыть параллельно, иначе закрытие сорвалось и её доберёт sweep
		if _, err := uc.rooms.Get(id); err != nil {
			return err
		}

		return fmt.Errorf("delete room %s: %w", id, domain.ErrEvictionFailed)
	}

	return nil
}

func (uc *roomUsecase) JoinRoom(ctx context.Context, id string, role models.Role) (memory.JoinResult, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	result, err := uc.rooms.Join(id, role)
	if err != nil {
		return memory.JoinResult{}, err
	}

	uc.eviction.Cancel(id)

	slog.Info(
		"user joined room",
		slog.String(constant.RoomID, id),
		slog.String(constant.UserID, result.UserID),
		slog.String(constant.Role, string(result.Role)),
	)

	if err = uc.presence.Broadcast(id); err != nil {
		slog.Error("broadcast presence", slog.String(constant.RoomID, id), slog.Any(constant.Error, err))
	}

	return result, nil
}

func (uc *roomUsecase) LeaveRoom(ctx context.Context, id, userID string) (models.Room, error) {
	room, err := uc.leave(id, userID)
	if err != nil {
		return models.Room{}, err
	}

	if room.Occupancy() == 0 {
		uc.eviction.Schedule(id, uc.leaveGrace, models.ReasonEmpty)
	}

	return room, nil
}

func (uc *roomUsecase) leave(id, userID string) (models.Room, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	room, err := uc.rooms.Leave(id, userID)
	if err != nil {
		return models.Room{}, err
	}

	// соединения пользователя остаются открытыми, но из комнаты выходят
	uc.sessions.UnregisterUser(id, userID)

	slog.Info("user left room", slog.String(constant.RoomID, id), slog.String(constant.UserID, userID))

	if err = uc.presence.Broadcast(id); err != nil {
		slog.Error("broadcast presence", slog.String(constant.RoomID, id), slog.Any(constant.Error, err))
	}

	return room, nil
}
