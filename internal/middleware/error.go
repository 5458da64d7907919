package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"khrental/internal/domain"
	"khrental/internal/pkg/i18n"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Current any    `json:"current,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// userFacing is implemented by errors that already carry a translated
// message and the state the client should re-display.
type userFacing interface {
	UserMessage() string
}

type withCurrent interface {
	CurrentState() any
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:        fiber.StatusUnprocessableEntity,
	domain.KindInvalidTransition: fiber.StatusConflict,
	domain.KindConflict:          fiber.StatusConflict,
	domain.KindUnauthorized:      fiber.StatusForbidden,
	domain.KindNotFound:          fiber.StatusNotFound,
	domain.KindStorage:           fiber.StatusServiceUnavailable,
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	traceID := uuid.New().String()[:8]

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{
			Code:    fiberCode(fiberErr.Code),
			Message: fiberErr.Message,
			TraceID: traceID,
		})
	}

	kind := domain.KindOf(err)
	resp := ErrorResponse{
		Code:    string(kind),
		TraceID: traceID,
	}

	var uf userFacing
	if errors.As(err, &uf) {
		resp.Message = uf.UserMessage()
	} else {
		resp.Message = i18n.Translate(i18n.LocaleFrom(c.UserContext(), i18n.DefaultLocale), string(kind))
	}

	var wc withCurrent
	if errors.As(err, &wc) {
		resp.Current = wc.CurrentState()
	}

	if kind == domain.KindStorage {
		slog.Error("request failed", "trace_id", traceID, "path", c.Path(), "error", err)
	} else {
		resp.Detail = err.Error()
	}

	return c.Status(kindStatus[kind]).JSON(resp)
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "INTERNAL_ERROR"
	}
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}
