package runtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/domain/models"
)

// Outbound - живое соединение клиента. Send не блокирует: сообщение
// ставится в очередь соединения или отбрасывается, если оно закрыто.
type Outbound interface {
	ID() uuid.UUID
	Send(msg events.Message) bool
	Close()
}

// Session - привязка одного соединения к комнате и роли
type Session struct {
	ID       uuid.UUID   `json:"id"`
	UserID   string      `json:"user_id"`
	RoomID   string      `json:"room_id"`
	Role     models.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`

	Conn Outbound `json:"-"`
}
