package models

import "time"

type EvictionReason string

const (
	ReasonExpired  EvictionReason = "expired"
	ReasonInactive EvictionReason = "inactive"
	ReasonEmpty    EvictionReason = "empty"
	ReasonDeleted  EvictionReason = "deleted"
	ReasonShutdown EvictionReason = "shutdown"
)

// Message - текст для клиентов в событии room-closed
func (r EvictionReason) Message() string {
	switch r {
	case ReasonExpired:
		return "Room has been closed because it reached its maximum lifetime"
	case ReasonInactive:
		return "Room has been closed due to inactivity"
	case ReasonEmpty:
		return "Room has been closed because it was empty"
	case ReasonDeleted:
		return "Room has been deleted"
	case ReasonShutdown:
		return "Server is shutting down"
	default:
		return "Room has been closed"
	}
}

// EvictionRecord - запись журнала о закрытой комнате
type EvictionRecord struct {
	RoomID           string         `json:"roomId" db:"room_id"`
	Reason           EvictionReason `json:"reason" db:"reason"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
	LastActivityAt   time.Time      `json:"lastActivityAt" db:"last_activity_at"`
	EvictedAt        time.Time      `json:"evictedAt" db:"evicted_at"`
	PeakOccupancy    int            `json:"peakOccupancy" db:"peak_occupancy"`
	SessionsNotified int            `json:"sessionsNotified" db:"sessions_notified"`
}

func NewEvictionRecord(room *Room, reason EvictionReason, notified int, now time.Time) EvictionRecord {
	return EvictionRecord{
		RoomID:           room.ID,
		Reason:           reason,
		CreatedAt:        room.CreatedAt,
		LastActivityAt:   room.LastActivityAt,
		EvictedAt:        now,
		PeakOccupancy:    room.PeakOccupancy,
		SessionsNotified: notified,
	}
}
