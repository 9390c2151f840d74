package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomRelay/internal/usecase"
)

type RoomHandler struct {
	domain string

	roomUsecase usecase.RoomUsecase
}

func NewRoomHandler(cfg *config.Config, roomUsecase usecase.RoomUsecase) *RoomHandler {
	return &RoomHandler{
		domain:      strings.TrimSuffix(cfg.Domain, "/"),
		roomUsecase: roomUsecase,
	}
}

func (h *RoomHandler) CreateRoomHandler(c echo.Context) error {
	room, err := h.roomUsecase.CreateRoom(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.NewRoomResponseFromModel(room)
	resp.URL = h.domain + "/room/" + room.ID

	return c.JSON(http.StatusCreated, dto.CreateRoomResponse{
		Success: true,
		RoomID:  room.ID,
		Room:    resp,
	})
}

func (h *RoomHandler) ListRoomsHandler(c echo.Context) error {
	rooms := h.roomUsecase.ListRooms(c.Request().Context())

	return c.JSON(http.StatusOK, dto.NewListRoomsResponse(rooms))
}

func (h *RoomHandler) GetRoomHandler(c echo.Context) error {
	room, err := h.roomUsecase.GetRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, dto.GetRoomResponse{
		Success: true,
		Room:    dto.NewRoomResponseFromModel(room),
	})
}

func (h *RoomHandler) DeleteRoomHandler(c echo.Context) error {
	if err := h.roomUsecase.DeleteRoom(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Room deleted"})
}

func (h *RoomHandler) JoinRoomHandler(c echo.Context) error {
	var req dto.JoinRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	}

	role, err := models.ParseRole(req.UserType)
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.roomUsecase.JoinRoom(c.Request().Context(), c.Param("id"), role)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewJoinRoomResponse(result))
}

func (h *RoomHandler) LeaveRoomHandler(c echo.Context) error {
	var req dto.LeaveRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	}

	room, err := h.roomUsecase.LeaveRoom(c.Request().Context(), c.Param("id"), req.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewLeaveRoomResponse(room))
}
