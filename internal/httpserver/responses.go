package httpserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/service/auth"
)

// apiResponse — единый конверт всех ответов API.
type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Машиночитаемые коды ошибок API.
const (
	codeBadRequest        = "bad_request"
	codeValidation        = "validation_failed"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeNotFound          = "not_found"
	codeConflict          = "conflict"
	codeInsufficientStock = "insufficient_stock"
	codeNoCostData        = "no_cost_data"
	codeInternal          = "internal_error"
)

func respondOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(apiResponse{Success: true, Data: data})
}

func respondCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(apiResponse{Success: true, Data: data})
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(apiResponse{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
}

// respondDomainError переводит доменную ошибку в HTTP-статус. Текст доменной
// ошибки отдаётся как есть: sentinel-ошибки движка не содержат внутренних
// деталей хранилища.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return respondError(c, fiber.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, auth.ErrTokenInvalid):
		return respondError(c, fiber.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		return respondError(c, fiber.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return respondError(c, fiber.StatusConflict, codeInsufficientStock, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderVersionConflict):
		return respondError(c, fiber.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrNoCostData):
		return respondError(c, fiber.StatusUnprocessableEntity, codeNoCostData, err.Error())
	default:
		return respondError(c, fiber.StatusInternalServerError, codeInternal, "internal error")
	}
}
