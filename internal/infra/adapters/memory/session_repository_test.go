package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/domain/models"
)

func setupRoomWithPair(t *testing.T) (RoomRepository, SessionRepository, models.Room, JoinResult, JoinResult) {
	t.Helper()

	clk := newTestClock()
	rooms := NewRoomRepository(clk)
	sessions := NewSessionRepository(rooms, clk)

	room, err := rooms.Create()
	require.NoError(t, err)

	host, err := rooms.Join(room.ID, models.RoleHost)
	require.NoError(t, err)

	guest, err := rooms.Join(room.ID, models.RoleParticipant)
	require.NoError(t, err)

	return rooms, sessions, room, host, guest
}

func TestSessionRepository_Register(t *testing.T) {
	req := require.New(t)
	_, sessions, room, host, guest := setupRoomWithPair(t)

	hostConn, guestConn := newStubConn(), newStubConn()

	hs, err := sessions.Register(room.ID, host.UserID, models.RoleHost, hostConn)
	req.NoError(err)
	req.Equal(hostConn.ID(), hs.ID)
	req.Equal(host.UserID, hs.UserID)
	req.Equal(testEpoch, hs.JoinedAt)

	_, err = sessions.Register(room.ID, guest.UserID, models.RoleParticipant, guestConn)
	req.NoError(err)

	req.Len(sessions.InRoom(room.ID), 2)
	req.Equal(2, sessions.Count())

	got, ok := sessions.Get(hostConn.ID())
	req.True(ok)
	req.Equal(models.RoleHost, got.Role)
}

func TestSessionRepository_RegisterRejectsMismatch(t *testing.T) {
	req := require.New(t)
	rooms, sessions, room, host, _ := setupRoomWithPair(t)

	// Wrong role for the user
	_, err := sessions.Register(room.ID, host.UserID, models.RoleParticipant, newStubConn())
	req.ErrorIs(err, domain.ErrSessionInvalid)

	// Unknown user
	_, err = sessions.Register(room.ID, "nobody", models.RoleHost, newStubConn())
	req.ErrorIs(err, domain.ErrSessionInvalid)

	// Missing room
	_, err = sessions.Register("missing", host.UserID, models.RoleHost, newStubConn())
	req.ErrorIs(err, domain.ErrSessionInvalid)
	req.ErrorIs(err, domain.ErrRoomNotFound)

	// Ended room
	_, err = rooms.MarkEnded(room.ID, models.ReasonDeleted)
	req.NoError(err)
	_, err = sessions.Register(room.ID, host.UserID, models.RoleHost, newStubConn())
	req.ErrorIs(err, domain.ErrRoomClosed)

	req.Zero(sessions.Count())
}

func TestSessionRepository_RegisterSameConnectionReplaces(t *testing.T) {
	req := require.New(t)
	rooms, sessions, room, host, _ := setupRoomWithPair(t)

	other, err := rooms.Create()
	req.NoError(err)
	otherHost, err := rooms.Join(other.ID, models.RoleHost)
	req.NoError(err)

	conn := newStubConn()

	_, err = sessions.Register(room.ID, host.UserID, models.RoleHost, conn)
	req.NoError(err)

	_, err = sessions.Register(other.ID, otherHost.UserID, models.RoleHost, conn)
	req.NoError(err)

	req.Empty(sessions.InRoom(room.ID))
	req.Len(sessions.InRoom(other.ID), 1)
	req.Equal(1, sessions.Count())
}

func TestSessionRepository_Unregister(t *testing.T) {
	req := require.New(t)
	_, sessions, room, host, guest := setupRoomWithPair(t)

	hostConn, guestConn := newStubConn(), newStubConn()

	_, err := sessions.Register(room.ID, host.UserID, models.RoleHost, hostConn)
	req.NoError(err)
	_, err = sessions.Register(room.ID, guest.UserID, models.RoleParticipant, guestConn)
	req.NoError(err)

	removed, ok := sessions.Unregister(hostConn.ID())
	req.True(ok)
	req.Equal(host.UserID, removed.UserID)

	_, ok = sessions.Unregister(hostConn.ID())
	req.False(ok)

	left := sessions.InRoom(room.ID)
	req.Len(left, 1)
	req.Equal(guest.UserID, left[0].UserID)
}

func TestSessionRepository_UnregisterUserAndRoom(t *testing.T) {
	req := require.New(t)
	_, sessions, room, host, guest := setupRoomWithPair(t)

	_, err := sessions.Register(room.ID, host.UserID, models.RoleHost, newStubConn())
	req.NoError(err)
	_, err = sessions.Register(room.ID, host.UserID, models.RoleHost, newStubConn())
	req.NoError(err)
	_, err = sessions.Register(room.ID, guest.UserID, models.RoleParticipant, newStubConn())
	req.NoError(err)

	removed := sessions.UnregisterUser(room.ID, host.UserID)
	req.Len(removed, 2)
	req.Len(sessions.InRoom(room.ID), 1)

	removed = sessions.UnregisterRoom(room.ID)
	req.Len(removed, 1)
	req.Empty(sessions.InRoom(room.ID))
	req.Zero(sessions.Count())

	req.Empty(sessions.UnregisterRoom(room.ID))
}
