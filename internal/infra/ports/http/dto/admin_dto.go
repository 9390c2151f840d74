package dto

import (
	"github.com/qrave1/RoomRelay/internal/domain/models"
	"github.com/qrave1/RoomRelay/internal/usecase"
)

type CleanupStatsResponse struct {
	Success bool          `json:"success"`
	Stats   usecase.Stats `json:"stats"`
}

type CleanupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	usecase.SweepReport
}

type EvictionsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

type EvictionsResponse struct {
	Success   bool                    `json:"success"`
	Evictions []models.EvictionRecord `json:"evictions"`
}
