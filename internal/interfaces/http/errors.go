package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/rs/zerolog"
)

// writeError traduce un error del caso de uso a status + dto.ErrorResponse.
// Los errores internos se registran y no exponen el detalle al cliente.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var deps *domain.HasDependentsError
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrParentNotFound):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "PARENT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "categoría no encontrada"})
	case errors.Is(err, domain.ErrCycleDetected):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CYCLE_DETECTED", Message: err.Error()})
	case errors.Is(err, domain.ErrSlugConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SLUG_CONFLICT", Message: err.Error()})
	case errors.As(err, &deps):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "HAS_DEPENDENTS",
			Message: err.Error(),
			Details: dto.DependentsDetails{Products: deps.Products, Subcategories: deps.Subcategories},
		})
	case errors.Is(err, domain.ErrHasDependents):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "HAS_DEPENDENTS", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Str("company_id", GetCompanyID(c)).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
