package handler

import (
	"github.com/labstack/echo/v4"
)

// envelope is the shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type pageResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// ErrorBody builds the failure envelope. Used by the central error handler.
func ErrorBody(msg string) any {
	return envelope{Success: false, Error: msg}
}
