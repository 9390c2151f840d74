package memory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/domain/runtime"
)

// SessionRepository - справочник сессий: какое соединение какую роль занимает в какой комнате.
// Комнату не владеет: при регистрации только сверяется с RoomRepository.
type SessionRepository interface {
	// Register привязывает соединение к комнате, если комната подтверждает userID в роли role
	Register(roomID, userID string, role models.Role, conn runtime.Outbound) (runtime.Session, error)

	Get(sessionID uuid.UUID) (runtime.Session, bool)
	InRoom(roomID string) []runtime.Session
	Count() int

	Unregister(sessionID uuid.UUID) (runtime.Session, bool)
	UnregisterUser(roomID, userID string) []runtime.Session
	UnregisterRoom(roomID string) []runtime.Session
}

type RoomReader interface {
	Get(id string) (models.Room, error)
}

type Set map[uuid.UUID]struct{}

type sessionRepository struct {
	rooms RoomReader
	clock clockwork.Clock

	sessions    map[uuid.UUID]runtime.Session // map session -> Session
	roomMembers map[string]Set                // map room -> sessions
	mu          sync.RWMutex
}

func NewSessionRepository(rooms RoomReader, clk clockwork.Clock) SessionRepository {
	return &sessionRepository{
		rooms:       rooms,
		clock:       clk,
		sessions:    make(map[uuid.UUID]runtime.Session),
		roomMembers: make(map[string]Set),
	}
}

func (r *sessionRepository) Register(
	roomID, userID string,
	role models.Role,
	conn runtime.Outbound,
) (runtime.Session, error) {
	room, err := r.rooms.Get(roomID)
	if err != nil {
		return runtime.Session{}, fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
	}

	if room.Status == models.StatusEnded {
		return runtime.Session{}, fmt.Errorf("%w: %w", domain.ErrSessionInvalid, domain.ErrRoomClosed)
	}

	if userID == "" || room.Holder(role) != userID {
		return runtime.Session{}, domain.ErrSessionInvalid
	}

	session := runtime.Session{
		ID:       conn.ID(),
		UserID:   userID,
		RoomID:   roomID,
		Role:     role,
		JoinedAt: r.clock.Now(),
		Conn:     conn,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// одно соединение - одна сессия
	r.removeLocked(session.ID)

	r.sessions[session.ID] = session

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][session.ID] = struct{}{}

	return session, nil
}

func (r *sessionRepository) Get(sessionID uuid.UUID) (runtime.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	return session, ok
}

func (r *sessionRepository) InRoom(roomID string) []runtime.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}

	return lo.FilterMap(lo.Keys(members), func(id uuid.UUID, _ int) (runtime.Session, bool) {
		session, exists := r.sessions[id]
		return session, exists
	})
}

func (r *sessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

func (r *sessionRepository) Unregister(sessionID uuid.UUID) (runtime.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeLocked(sessionID)
}

func (r *sessionRepository) UnregisterUser(roomID, userID string) []runtime.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []runtime.Session

	for id := range r.roomMembers[roomID] {
		if r.sessions[id].UserID != userID {
			continue
		}

		if session, ok := r.removeLocked(id); ok {
			removed = append(removed, session)
		}
	}

	return removed
}

func (r *sessionRepository) UnregisterRoom(roomID string) []runtime.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := lo.Keys(r.roomMembers[roomID])
	removed := make([]runtime.Session, 0, len(members))

	for _, id := range members {
		if session, ok := r.removeLocked(id); ok {
			removed = append(removed, session)
		}
	}

	delete(r.roomMembers, roomID)

	return removed
}

func (r *sessionRepository) removeLocked(sessionID uuid.UUID) (runtime.Session, bool) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return runtime.Session{}, false
	}

	delete(r.sessions, sessionID)

	if members, exists := r.roomMembers[session.RoomID]; exists {
		delete(members, sessionID)

		// пустые множества не держим
		if len(members) == 0 {
			delete(r.roomMembers, session.RoomID)
		}
	}

	return session, true
}
