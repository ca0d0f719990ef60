package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/charseed/internal/inference"
	"github.com/samcharles93/charseed/internal/logits"
	"github.com/samcharles93/charseed/internal/model"
	"github.com/samcharles93/charseed/internal/tokenizer"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// classifyError maps a generation or load failure to an HTTP status and an
// error body.
func classifyError(err error) (int, ResponseError) {
	body := ResponseError{Message: err.Error()}
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, inference.ErrInvalidOptions),
		errors.Is(err, inference.ErrSeedLength),
		errors.Is(err, tokenizer.ErrUnknownCharacter):
		body.Type = "invalid_request_error"
		switch {
		case errors.Is(err, tokenizer.ErrUnknownCharacter), errors.Is(err, inference.ErrSeedLength):
			body.Param = "seed"
		}
		return http.StatusBadRequest, body
	case errors.Is(err, model.ErrModelNotFound):
		body.Type = "not_found_error"
		body.Code = "model_not_found"
		return http.StatusNotFound, body
	case errors.Is(err, model.ErrUnavailable),
		errors.Is(err, model.ErrShapeMismatch),
		errors.Is(err, logits.ErrInvalidProbability),
		errors.Is(err, errNoModel):
		body.Type = "model_unavailable"
		body.Code = "model_unavailable"
		return http.StatusServiceUnavailable, body
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		body.Type = "server_error"
		body.Code = "cancelled"
		return http.StatusServiceUnavailable, body
	default:
		body.Type = "server_error"
		return http.StatusInternalServerError, body
	}
}

func writeClassified(c *echo.Context, err error) error {
	status, body := classifyError(err)
	return writeError(c, status, body.Type, body.Message, body.Param, body.Code)
}
