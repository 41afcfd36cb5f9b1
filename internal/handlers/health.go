package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/session"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// Health возвращает статус сервиса и число открытых сессий.
func Health(sessions *session.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := HealthResponse{Status: "ok"}
		if sessions != nil {
			response.Sessions = sessions.Len()
		}
		return c.JSON(http.StatusOK, response)
	}
}
