package memory

import (
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/lo"

	"github.com/qrave1/RoomRelay/internal/application/metric"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/models"
)

const (
	roomIDLength = 10
	userIDLength = 8

	// maxIDAttempts - сколько раз пробуем сгенерировать незанятый id
	maxIDAttempts = 8
)

// RoomRepository хранит комнаты в памяти процесса.
// Все изменения одной комнаты сериализованы, разные комнаты не блокируют друг друга.
type RoomRepository interface {
	Create() (models.Room, error)
	Get(id string) (models.Room, error)
	List() []models.Room
	Count() int

	Join(id string, requested models.Role) (JoinResult, error)
	Leave(id, userID string) (models.Room, error)
	Touch(id string) error

	// MarkEnded переводит комнату в ended: новые join отклоняются
	MarkEnded(id string, reason models.EvictionReason) (models.Room, error)
	Delete(id string) error
}

type JoinResult struct {
	Role   models.Role
	UserID string
	Room   models.Room
}

type IDGenerator func(size int) (string, error)

type RoomRepositoryOption func(*roomRepository)

func WithIDGenerator(gen IDGenerator) RoomRepositoryOption {
	return func(r *roomRepository) {
		r.newID = gen
	}
}

type roomEntry struct {
	mu      sync.Mutex
	room    models.Room
	deleted bool
}

type roomRepository struct {
	clock clockwork.Clock
	newID IDGenerator

	// rooms хранит map[room_id]*roomEntry
	rooms map[string]*roomEntry
	mu    sync.RWMutex
}

func NewRoomRepository(clk clockwork.Clock, opts ...RoomRepositoryOption) RoomRepository {
	r := &roomRepository{
		clock: clk,
		newID: func(size int) (string, error) { return gonanoid.New(size) },
		rooms: make(map[string]*roomEntry),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *roomRepository) Create() (models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for range maxIDAttempts {
		id, err := r.newID(roomIDLength)
		if err != nil {
			return models.Room{}, fmt.Errorf("generate room id: %w", err)
		}

		if _, exists := r.rooms[id]; exists {
			continue
		}

		entry := &roomEntry{room: *models.NewRoom(id, r.clock.Now())}
		r.rooms[id] = entry

		metric.SetRooms(len(r.rooms))

		return entry.room, nil
	}

	return models.Room{}, domain.ErrIDSpaceExhausted
}

func (r *roomRepository) Get(id string) (models.Room, error) {
	var room models.Room

	err := r.withRoom(id, func(entry *roomEntry) error {
		room = entry.room
		return nil
	})

	return room, err
}

func (r *roomRepository) List() []models.Room {
	r.mu.RLock()
	entries := lo.Values(r.rooms)
	r.mu.RUnlock()

	rooms := make([]models.Room, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if !entry.deleted {
			rooms = append(rooms, entry.room)
		}
		entry.mu.Unlock()
	}

	return rooms
}

func (r *roomRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func (r *roomRepository) Join(id string, requested models.Role) (JoinResult, error) {
	var result JoinResult

	err := r.withRoom(id, func(entry *roomEntry) error {
		room := &entry.room

		userID, err := r.newUserID(room)
		if err != nil {
			return err
		}

		role, err := room.Assign(requested, userID, r.clock.Now())
		if err != nil {
			return err
		}

		result = JoinResult{Role: role, UserID: userID, Room: *room}
		return nil
	})

	return result, err
}

func (r *roomRepository) newUserID(room *models.Room) (string, error) {
	for range maxIDAttempts {
		userID, err := r.newID(userIDLength)
		if err != nil {
			return "", fmt.Errorf("generate user id: %w", err)
		}

		if _, taken := room.RoleOf(userID); !taken {
			return userID, nil
		}
	}

	return "", domain.ErrIDSpaceExhausted
}

func (r *roomRepository) Leave(id, userID string) (models.Room, error) {
	var room models.Room

	err := r.withRoom(id, func(entry *roomEntry) error {
		if _, err := entry.room.Release(userID, r.clock.Now()); err != nil {
			return err
		}

		room = entry.room
		return nil
	})

	return room, err
}

func (r *roomRepository) Touch(id string) error {
	return r.withRoom(id, func(entry *roomEntry) error {
		entry.room.Touch(r.clock.Now())
		return nil
	})
}

func (r *roomRepository) MarkEnded(id string, reason models.EvictionReason) (models.Room, error) {
	var room models.Room

	err := r.withRoom(id, func(entry *roomEntry) error {
		entry.room.Status = models.StatusEnded
		entry.room.EndReason = reason
		entry.room.Touch(r.clock.Now())
		room = entry.room
		return nil
	})

	return room, err
}

func (r *roomRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}

	entry.mu.Lock()
	entry.deleted = true
	entry.mu.Unlock()

	delete(r.rooms, id)

	metric.SetRooms(len(r.rooms))

	return nil
}

// withRoom выполняет fn под блокировкой конкретной комнаты
func (r *roomRepository) withRoom(id string, fn func(entry *roomEntry) error) error {
	r.mu.RLock()
	entry, ok := r.rooms[id]
	r.mu.RUnlock()

	if !ok {
		return domain.ErrRoomNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// комнату могли удалить между поиском и захватом блокировки
	if entry.deleted {
		return domain.ErrRoomNotFound
	}

	return fn(entry)
}
