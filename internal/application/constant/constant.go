package constant

// Ключи атрибутов slog
const (
	Error     = "error"
	RoomID    = "room_id"
	UserID    = "user_id"
	SessionID = "session_id"
	Role      = "role"
	Reason    = "reason"
	Count     = "count"
	EventType = "event_type"
)
