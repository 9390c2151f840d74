package usecase

import (
	"log/slog"

	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/application/metric"
	"github.com/qrave1/RoomRelay/internal/domain/events"
	"github.com/qrave1/RoomRelay/internal/domain/runtime"
)

// deliver ставит сообщение в очередь соединения. Закрытое соединение - не ошибка.
func deliver(session runtime.Session, msg events.Message) {
	if session.Conn == nil || session.Conn.Send(msg) {
		return
	}

	metric.IncDropped()

	slog.Debug(
		"drop message for gone connection",
		slog.String(constant.SessionID, session.ID.String()),
		slog.String(constant.EventType, string(msg.Type)),
	)
}
