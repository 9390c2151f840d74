package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
)

// ErrorResponse - общий ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func Fail(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}

type JoinRoomRequest struct {
	UserType string `json:"userType" validate:"omitempty,oneof=host participant"`
}

type LeaveRoomRequest struct {
	UserID string `json:"userId" query:"userId" validate:"required,max=64"`
}

type RoomResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	UserCount      int       `json:"userCount"`
	IsReady        bool      `json:"isReady"`
	HostID         string    `json:"hostId,omitempty"`
	ParticipantID  string    `json:"participantId,omitempty"`
	URL            string    `json:"url,omitempty"`
}

func NewRoomResponseFromModel(room models.Room) RoomResponse {
	return RoomResponse{
		ID:             room.ID,
		Status:         string(room.Status),
		CreatedAt:      room.CreatedAt,
		LastActivityAt: room.LastActivityAt,
		UserCount:      room.Occupancy(),
		IsReady:        room.IsReady(),
		HostID:         room.HostID,
		ParticipantID:  room.ParticipantID,
	}
}

type CreateRoomResponse struct {
	Success bool         `json:"success"`
	RoomID  string       `json:"roomId"`
	Room    RoomResponse `json:"room"`
}

type GetRoomResponse struct {
	Success bool         `json:"success"`
	Room    RoomResponse `json:"room"`
}

type ListRoomsResponse struct {
	Success    bool           `json:"success"`
	Rooms      []RoomResponse `json:"rooms"`
	TotalRooms int            `json:"totalRooms"`
}

func NewListRoomsResponse(rooms []models.Room) ListRoomsResponse {
	return ListRoomsResponse{
		Success:    true,
		Rooms:      lo.Map(rooms, func(room models.Room, _ int) RoomResponse { return NewRoomResponseFromModel(room) }),
		TotalRooms: len(rooms),
	}
}

type JoinedRoom struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	UserCount int    `json:"userCount"`
	IsReady   bool   `json:"isReady"`
}

type JoinRoomResponse struct {
	Success  bool       `json:"success"`
	UserID   string     `json:"userId"`
	UserType string     `json:"userType"`
	Room     JoinedRoom `json:"room"`
}

func NewJoinRoomResponse(result memory.JoinResult) JoinRoomResponse {
	return JoinRoomResponse{
		Success:  true,
		UserID:   result.UserID,
		UserType: string(result.Role),
		Room: JoinedRoom{
			ID:        result.Room.ID,
			Status:    string(result.Room.Status),
			UserCount: result.Room.Occupancy(),
			IsReady:   result.Room.IsReady(),
		},
	}
}

type LeaveRoomResponse struct {
	Success bool       `json:"success"`
	Room    JoinedRoom `json:"room"`
}

func NewLeaveRoomResponse(room models.Room) LeaveRoomResponse {
	return LeaveRoomResponse{
		Success: true,
		Room: JoinedRoom{
			ID:        room.ID,
			Status:    string(room.Status),
			UserCount: room.Occupancy(),
			IsReady:   room.IsReady(),
		},
	}
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
