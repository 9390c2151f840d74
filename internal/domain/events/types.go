package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message - общее событие websocket
type Message struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Type string

// Входящие события
const (
	TypeJoinRoom               Type = "join-room"
	TypeLeaveRoom              Type = "leave-room"
	TypeSignal                 Type = "webrtc-signal"
	TypeSpeakingStatus         Type = "speaking-status"
	TypeAgentSpeaking          Type = "agent-speaking"
	TypeSessionPhaseUpdate     Type = "session-phase-update"
	TypeRelationshipTypeUpdate Type = "relationship-type-update"
	TypePing                   Type = "ping"
)

// Исходящие события
const (
	TypeJoinedRoom               Type = "joined-room"
	TypeRoomUpdated              Type = "room-updated"
	TypeUserSpeaking             Type = "user-speaking"
	TypeAgentStatus              Type = "agent-status"
	TypeSessionPhaseChanged      Type = "session-phase-changed"
	TypeRelationshipTypeDetected Type = "relationship-type-detected"
	TypeRoomClosed               Type = "room-closed"
	TypeError                    Type = "error"
	TypePong                     Type = "pong"
)

// forwarded - события, которые пересылаются второму участнику без разбора
var forwarded = map[Type]Type{
	TypeSpeakingStatus:         TypeUserSpeaking,
	TypeAgentSpeaking:          TypeAgentStatus,
	TypeSessionPhaseUpdate:     TypeSessionPhaseChanged,
	TypeRelationshipTypeUpdate: TypeRelationshipTypeDetected,
}

// ForwardedAs возвращает исходящий тип для пересылаемого события
func ForwardedAs(t Type) (Type, bool) {
	out, ok := forwarded[t]
	return out, ok
}

// New упаковывает payload в Message
func New(t Type, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}

	return Message{Type: t, Data: data}, nil
}

// JoinRoomEvent - подключение сессии к комнате после REST join
type JoinRoomEvent struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

// SignalEvent - входящий сигнал, payload не разбирается
type SignalEvent struct {
	Signal       json.RawMessage `json:"signal"`
	TargetUserID string          `json:"targetUserId,omitempty"`
}

// SignalForwardEvent - сигнал, доставляемый получателю
type SignalForwardEvent struct {
	UserID string          `json:"userId"`
	Signal json.RawMessage `json:"signal"`
}

type UserSnapshot struct {
	ID        string    `json:"id"`
	UserType  string    `json:"userType"`
	JoinedAt  time.Time `json:"joinedAt"`
	Connected bool      `json:"connected"`
}

// RoomSnapshot - состояние комнаты для room-updated
type RoomSnapshot struct {
	RoomID    string         `json:"roomId"`
	Status    string         `json:"status"`
	UserCount int            `json:"userCount"`
	IsReady   bool           `json:"isReady"`
	Users     []UserSnapshot `json:"users"`
}

type JoinedRoomEvent struct {
	RoomID    string       `json:"roomId"`
	UserID    string       `json:"userId"`
	UserType  string       `json:"userType"`
	UserCount int          `json:"userCount"`
	IsReady   bool         `json:"isReady"`
	Room      RoomSnapshot `json:"room"`
}

type RoomClosedEvent struct {
	RoomID  string `json:"roomId"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// SpeakingStatusEvent - входящий speaking-status
type SpeakingStatusEvent struct {
	Speaking bool `json:"speaking"`
}

// UserSpeakingEvent - speaking-status, дополненный отправителем
type UserSpeakingEvent struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
	Speaking bool   `json:"speaking"`
}
