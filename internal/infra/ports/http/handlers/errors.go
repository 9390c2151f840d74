package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/domain"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/dto"
)

// statusOf сопоставляет доменную ошибку с HTTP статусом и текстом для клиента
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusNotFound, "Room not found"
	case errors.Is(err, domain.ErrUserNotInRoom):
		return http.StatusNotFound, "User not found in room"
	case errors.Is(err, domain.ErrRoomFull):
		return http.StatusConflict, "Room is full"
	case errors.Is(err, domain.ErrRoomClosed):
		return http.StatusConflict, "Room is closing"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid user type"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func respondError(c echo.Context, err error) error {
	status, msg := statusOf(err)

	if status == http.StatusInternalServerError {
		slog.Error(
			"request failed",
			slog.String("path", c.Path()),
			slog.Any(constant.Error, err),
		)
	}

	return c.JSON(status, dto.Fail(msg))
}

// bindAndValidate разбирает запрос и проверяет его через echo Validator
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid request")
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	return nil
}
