package usecase

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
)

var testEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testEvictionConfig() config.EvictionConfig {
	return config.EvictionConfig{
		SweepInterval:     time.Minute,
		MaxAge:            2 * time.Hour,
		InactivityTimeout: 30 * time.Minute,
		EmptyGrace:        5 * time.Minute,
		LeaveGrace:        30 * time.Second,
	}
}

type testEnv struct {
	clock    *clockwork.FakeClock
	locks    *RoomLocks
	rooms    memory.RoomRepository
	sessions memory.SessionRepository
	journal  EvictionJournal

	presence  PresenceUsecase
	eviction  EvictionUsecase
	signaling SignalingUsecase
	room      RoomUsecase
}

func newTestEnv(t *testing.T, journal EvictionJournal) *testEnv {
	t.Helper()

	if journal == nil {
		journal = memory.NewEvictionJournalRepository(memory.DefaultJournalCapacity)
	}

	cfg := testEvictionConfig()

	env := &testEnv{
		clock:   clockwork.NewFakeClockAt(testEpoch),
		locks:   NewRoomLocks(),
		journal: journal,
	}

	env.rooms = memory.NewRoomRepository(env.clock)
	env.sessions = memory.NewSessionRepository(env.rooms, env.clock)
	env.presence = NewPresenceUsecase(env.rooms, env.sessions)
	env.eviction = NewEvictionUsecase(cfg, env.clock, env.locks, env.rooms, env.sessions, journal)
	env.signaling = NewSignalingUsecase(env.locks, env.rooms, env.sessions, env.presence, env.eviction, cfg.LeaveGrace)
	env.room = NewRoomUsecase(env.locks, env.rooms, env.sessions, env.presence, env.eviction, cfg.LeaveGrace)

	return env
}

// requireEvicted ждёт удаления комнаты: таймеры clockwork вызывают callback в отдельной горутине
func (e *testEnv) requireEvicted(t *testing.T, roomID string) {
	t.Helper()

	require.Eventually(t, func() bool {
		_, err := e.rooms.Get(roomID)
		return errors.Is(err, domain.ErrRoomNotFound)
	}, time.Second, 5*time.Millisecond)
}

func (e *testEnv) requireNotEvicted(t *testing.T, roomID string) {
	t.Helper()

	require.Never(t, func() bool {
		_, err := e.rooms.Get(roomID)
		return err != nil
	}, 50*time.Millisecond, 5*time.Millisecond)
}

type member struct {
	userID string
	role   models.Role
	conn   *recConn
}

// seatPair создаёт комнату с двумя участниками, подключёнными по websocket
func (e *testEnv) seatPair(t *testing.T) (models.Room, member, member) {
	t.Helper()

	ctx := t.Context()

	room, err := e.room.CreateRoom(ctx)
	require.NoError(t, err)

	host := e.seat(t, room.ID, models.RoleHost)
	guest := e.seat(t, room.ID, models.RoleParticipant)

	return room, host, guest
}

func (e *testEnv) seat(t *testing.T, roomID string, role models.Role) member {
	t.Helper()

	ctx := t.Context()

	joined, err := e.room.JoinRoom(ctx, roomID, role)
	require.NoError(t, err)

	conn := newRecConn()
	err = e.signaling.HandleJoin(ctx, conn, events.JoinRoomEvent{
		RoomID:   roomID,
		UserID:   joined.UserID,
		UserType: string(joined.Role),
	})
	require.NoError(t, err)

	return member{userID: joined.UserID, role: joined.Role, conn: conn}
}

type recConn struct {
	id uuid.UUID

	mu       sync.Mutex
	messages []events.Message
	closed   bool
}

func newRecConn() *recConn {
	return &recConn{id: uuid.New()}
}

func (c *recConn) ID() uuid.UUID { return c.id }

func (c *recConn) Send(msg events.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.messages = append(c.messages, msg)
	return true
}

func (c *recConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
}

func (c *recConn) all() []events.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]events.Message(nil), c.messages...)
}

func (c *recConn) ofType(t events.Type) []events.Message {
	var out []events.Message
	for _, msg := range c.all() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

func (c *recConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = nil
}

// decodeLast разбирает последнее сообщение типа msgType
func decodeLast[T any](t *testing.T, c *recConn, msgType events.Type) T {
	t.Helper()

	msgs := c.ofType(msgType)
	require.NotEmpty(t, msgs, "no %s messages", msgType)

	var out T
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Data, &out))

	return out
}

type panicConn struct {
	id uuid.UUID
}

func (c *panicConn) ID() uuid.UUID { return c.id }

func (c *panicConn) Send(events.Message) bool { panic("send exploded") }

func (c *panicConn) Close() {}

// flakyConn падает на первой отправке, дальше работает как recConn
type flakyConn struct {
	*recConn

	failed atomic.Bool
}

func newFlakyConn() *flakyConn {
	return &flakyConn{recConn: newRecConn()}
}

func (c *flakyConn) Send(msg events.Message) bool {
	if c.failed.CompareAndSwap(false, true) {
		panic("send exploded once")
	}

	return c.recConn.Send(msg)
}
