package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// response is the envelope of every API reply.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}, message ...string) error {
	resp := response{Success: true, Data: data}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	return ctx.JSON(code, resp)
}

func ok(ctx echo.Context, data interface{}, message ...string) error {
	return respond(ctx, http.StatusOK, data, message...)
}

func created(ctx echo.Context, data interface{}) error {
	return respond(ctx, http.StatusCreated, data)
}
