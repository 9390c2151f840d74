package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/infra/appctx"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomRelay/internal/usecase"
)

const defaultEvictionsLimit = 50

// AdminHandler - служебные ручки: статистика, ручная очистка и журнал закрытий
type AdminHandler struct {
	evictionUsecase usecase.EvictionUsecase
}

func NewAdminHandler(evictionUsecase usecase.EvictionUsecase) *AdminHandler {
	return &AdminHandler{evictionUsecase: evictionUsecase}
}

func (h *AdminHandler) CleanupStatsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.CleanupStatsResponse{
		Success: true,
		Stats:   h.evictionUsecase.Stats(),
	})
}

// CleanupHandler запускает ту же проверку, что и плановая
func (h *AdminHandler) CleanupHandler(c echo.Context) error {
	operator, _ := appctx.Operator(c.Request().Context())

	report := h.evictionUsecase.Sweep(c.Request().Context())

	slog.Info(
		"manual cleanup",
		slog.String("operator", operator),
		slog.Int(constant.Count, report.Evicted),
	)

	return c.JSON(http.StatusOK, dto.CleanupResponse{
		Success:     true,
		Message:     "Cleanup completed",
		SweepReport: report,
	})
}

func (h *AdminHandler) EvictionsHandler(c echo.Context) error {
	var req dto.EvictionsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	}

	if req.Limit == 0 {
		req.Limit = defaultEvictionsLimit
	}

	records, err := h.evictionUsecase.Journal(c.Request().Context(), req.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, dto.EvictionsResponse{Success: true, Evictions: records})
}
