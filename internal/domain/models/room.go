package models

import (
	"fmt"
	"time"

	"github.com/qrave1/RoomRelay/internal/domain"
)

type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// ParseRole принимает пустую строку как "любая роль"
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleHost, RoleParticipant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRole, s)
	}
}

func (r Role) Other() Role {
	if r == RoleHost {
		return RoleParticipant
	}

	return RoleHost
}

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
)

// MaxOccupancy - комната рассчитана ровно на двух участников
const MaxOccupancy = 2

type Room struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Status         Status    `json:"status"`

	HostID              string    `json:"host_id,omitempty"`
	HostJoinedAt        time.Time `json:"host_joined_at,omitzero"`
	ParticipantID       string    `json:"participant_id,omitempty"`
	ParticipantJoinedAt time.Time `json:"participant_joined_at,omitzero"`

	// EmptySince - момент, когда в комнате не осталось участников. Нулевое значение, пока комната занята.
	EmptySince time.Time `json:"empty_since,omitzero"`

	PeakOccupancy int `json:"peak_occupancy"`

	// EndReason - причина, с которой началось закрытие. Пусто, пока комната не ended.
	EndReason EvictionReason `json:"end_reason,omitempty"`
}

func NewRoom(id string, now time.Time) *Room {
	return &Room{
		ID:             id,
		CreatedAt:      now,
		LastActivityAt: now,
		Status:         StatusWaiting,
		EmptySince:     now,
	}
}

func (r *Room) Occupancy() int {
	n := 0
	if r.HostID != "" {
		n++
	}
	if r.ParticipantID != "" {
		n++
	}
	return n
}

func (r *Room) IsReady() bool {
	return r.Status == StatusActive
}

func (r *Room) Holder(role Role) string {
	if role == RoleHost {
		return r.HostID
	}

	return r.ParticipantID
}

// RoleOf возвращает роль, которую занимает userID
func (r *Room) RoleOf(userID string) (Role, bool) {
	switch {
	case userID == "":
		return "", false
	case r.HostID == userID:
		return RoleHost, true
	case r.ParticipantID == userID:
		return RoleParticipant, true
	default:
		return "", false
	}
}

// Assign занимает запрошенную роль, а если она занята - свободную.
// Пустая роль означает "любая": сначала host, затем participant.
func (r *Room) Assign(requested Role, userID string, now time.Time) (Role, error) {
	if r.Status == StatusEnded {
		return "", domain.ErrRoomClosed
	}

	if requested == "" {
		requested = RoleHost
	}

	role := requested
	if r.Holder(role) != "" {
		role = requested.Other()
		if r.Holder(role) != "" {
			return "", domain.ErrRoomFull
		}
	}

	if role == RoleHost {
		r.HostID, r.HostJoinedAt = userID, now
	} else {
		r.ParticipantID, r.ParticipantJoinedAt = userID, now
	}

	r.EmptySince = time.Time{}
	r.PeakOccupancy = max(r.PeakOccupancy, r.Occupancy())
	r.Touch(now)
	r.recomputeStatus()

	return role, nil
}

// Release освобождает роль пользователя
func (r *Room) Release(userID string, now time.Time) (Role, error) {
	role, ok := r.RoleOf(userID)
	if !ok {
		return "", domain.ErrUserNotInRoom
	}

	if role == RoleHost {
		r.HostID, r.HostJoinedAt = "", time.Time{}
	} else {
		r.ParticipantID, r.ParticipantJoinedAt = "", time.Time{}
	}

	if r.Occupancy() == 0 {
		r.EmptySince = now
	}

	r.Touch(now)
	r.recomputeStatus()

	return role, nil
}

// Touch never moves LastActivityAt backwards
func (r *Room) Touch(now time.Time) {
	if now.After(r.LastActivityAt) {
		r.LastActivityAt = now
	}
}

func (r *Room) recomputeStatus() {
	if r.Status == StatusEnded {
		return
	}

	if r.Occupancy() == MaxOccupancy {
		r.Status = StatusActive
	} else {
		r.Status = StatusWaiting
	}
}
