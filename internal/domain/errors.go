package domain

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomClosed       = errors.New("room is closing")
	ErrUserNotInRoom    = errors.New("user not found in room")
	ErrInvalidRole      = errors.New("invalid role")
	ErrIDSpaceExhausted = errors.New("room id space exhausted")
	ErrEvictionFailed   = errors.New("room eviction failed")

	ErrSessionInvalid  = errors.New("session does not match room membership")
	ErrNotInRoom       = errors.New("connection has not joined a room")
	ErrSenderNotInRoom = errors.New("sender is not in room")
	ErrTargetNotFound  = errors.New("target user not found in room")

	// ErrRegistryInconsistency - сессия ссылается на удалённую комнату.
	// Никогда не отдаётся пользователю: сессия удаляется молча.
	ErrRegistryInconsistency = errors.New("session references missing room")
)
