package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/domain/models"
)

// Create -> host -> host again -> full -> both leave -> evicted after the leave grace
func TestRoomUsecase_FullLifecycle(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, nil)
	ctx := t.Context()

	room, err := env.room.CreateRoom(ctx)
	req.NoError(err)

	first, err := env.room.JoinRoom(ctx, room.ID, models.RoleHost)
	req.NoError(err)
	req.Equal(models.RoleHost, first.Role)
	req.Equal(1, first.Room.Occupancy())
	req.False(first.Room.IsReady())

	second, err := env.room.JoinRoom(ctx, room.ID, models.RoleHost)
	req.NoError(err)
	req.Equal(models.RoleParticipant, second.Role)
	req.Equal(2, second.Room.Occupancy())
	req.True(second.Room.IsReady())

	_, err = env.room.JoinRoom(ctx, room.ID, "")
	req.ErrorIs(err, domain.ErrRoomFull)

	after, err := env.room.LeaveRoom(ctx, room.ID, first.UserID)
	req.NoError(err)
	req.Equal(1, after.Occupancy())
	req.Equal(models.StatusWaiting, after.Status)

	after, err = env.room.LeaveRoom(ctx, room.ID, second.UserID)
	req.NoError(err)
	req.Zero(after.Occupancy())

	env.clock.Advance(testEvictionConfig().LeaveGrace)

	env.requireEvicted(t, room.ID)

	_, err = env.room.GetRoom(ctx, room.ID)
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestRoomUsecase_LeaveThenJoinSameRole(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, nil)
	ctx := t.Context()

	room, err := env.room.CreateRoom(ctx)
	req.NoError(err)

	host, err := env.room.JoinRoom(ctx, room.ID, models.RoleHost)
	req.NoError(err)

	_, err = env.room.LeaveRoom(ctx, room.ID, host.UserID)
	req.NoError(err)

	again, err := env.room.JoinRoom(ctx, room.ID, models.RoleHost)
	req.NoError(err)
	req.Equal(models.RoleHost, again.Role)

	// The join cancelled the pending leave-grace eviction
	env.clock.Advance(time.Hour)
	_, err = env.room.GetRoom(ctx, room.ID)
	req.NoError(err)
}

func TestRoomUsecase_LeaveErrors(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, nil)
	ctx := t.Context()

	room, err := env.room.CreateRoom(ctx)
	req.NoError(err)

	_, err = env.room.LeaveRoom(ctx, room.ID, "nobody")
	req.ErrorIs(err, domain.ErrUserNotInRoom)

	_, err = env.room.LeaveRoom(ctx, "missing", "nobody")
	req.ErrorIs(err, domain.ErrRoomNotFound)

	_, err = env.room.JoinRoom(ctx, "missing", "")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestRoomUsecase_RestLeaveDetachesSessions(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, nil)
	ctx := t.Context()

	room, host, guest := env.seatPair(t)

	_, err := env.room.LeaveRoom(ctx, room.ID, guest.userID)
	req.NoError(err)

	_, ok := env.sessions.Get(guest.conn.ID())
	req.False(ok)

	snapshot := decodeLast[events.RoomSnapshot](t, host.conn, events.TypeRoomUpdated)
	req.Equal(1, snapshot.UserCount)
	req.Len(snapshot.Users, 1)
}

func TestRoomUsecase_JoinBroadcastsToConnectedSessions(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, nil)
	ctx := t.Context()

	room, err := env.room.CreateRoom(ctx)
	req.NoError(err)

	host := env.seat(t, room.ID, models.RoleHost)
	host.conn.reset()

	_, err = env.room.JoinRoom(ctx, room.ID, "")
	req.NoError(err)

	snapshot := decodeLast[events.RoomSnapshot](t, host.conn, events.TypeRoomUpdated)
	req.Equal(2, snapshot.UserCount)
	req.True(snapshot.IsReady)
	req.False(snapshot.Users[1].Connected)
}

func TestRoomUsecase_DeleteNotifiesSessions(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, nil)
	ctx := t.Context()

	room, host, guest := env.seatPair(t)

	req.NoError(env.room.DeleteRoom(ctx, room.ID))

	for _, m := range []member{host, guest} {
		closed := m.conn.ofType(events.TypeRoomClosed)
		req.Len(closed, 1)

		event := decodeLast[events.RoomClosedEvent](t, m.conn, events.TypeRoomClosed)
		req.Equal(room.ID, event.RoomID)
		req.Equal(string(models.ReasonDeleted), event.Reason)
	}

	req.Zero(env.sessions.Count())
	req.ErrorIs(env.room.DeleteRoom(ctx, room.ID), domain.ErrRoomNotFound)
}

func TestRoomUsecase_GetDoesNotTouchActivity(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t, nil)
	ctx := t.Context()

	room, err := env.room.CreateRoom(ctx)
	req.NoError(err)

	env.clock.Advance(time.Minute)

	got, err := env.room.GetRoom(ctx, room.ID)
	req.NoError(err)
	req.Equal(testEpoch, got.LastActivityAt)
	req.Len(env.room.ListRooms(ctx), 1)
}
