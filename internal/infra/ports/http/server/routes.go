package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/handlers"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	adminHandler *handlers.AdminHandler,
	iceHandler *handlers.IceHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	if cfg.Debug {
		e.Use(echomw.CORS())
	}

	adminAuth := middleware.AdminAuthMiddleware(cfg.AdminJWTSecret)

	api := e.Group("/api")
	{
		api.GET("/ice", iceHandler.IceServers)

		rooms := api.Group("/rooms")
		{
			rooms.POST("", roomHandler.CreateRoomHandler)
			rooms.GET("", roomHandler.ListRoomsHandler)

			rooms.GET("/cleanup", adminHandler.CleanupStatsHandler, adminAuth)
			rooms.POST("/cleanup", adminHandler.CleanupHandler, adminAuth)
			rooms.GET("/evictions", adminHandler.EvictionsHandler, adminAuth)

			rooms.GET("/:id", roomHandler.GetRoomHandler)
			rooms.DELETE("/:id", roomHandler.DeleteRoomHandler)
			rooms.POST("/:id/join", roomHandler.JoinRoomHandler)
			rooms.DELETE("/:id/join", roomHandler.LeaveRoomHandler)
			rooms.POST("/:id/leave", roomHandler.LeaveRoomHandler)
		}
	}

	e.GET("/ws", wsHandler.Handle)

	return e
}
