package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/rs/zerolog"
)

// CategoryHandler maneja las peticiones HTTP de categorías (protegido, acotado al proveedor del token).
type CategoryHandler struct {
	uc  *usecase.CategoryUseCase
	log zerolog.Logger
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, log: log}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
}

// List godoc
// @Summary      Listar categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CategoryListResponse
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.List(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Tree godoc
// @Summary      Árbol de categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CategoryNodeResponse
// @Router       /api/categories/tree [get]
func (h *CategoryHandler) Tree(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Tree(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener categoría por ID
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetBySlug godoc
// @Summary      Obtener categoría por slug
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        slug  path  string  true  "Slug de la categoría"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categories/slug/{slug} [get]
func (h *CategoryHandler) GetBySlug(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetBySlug(c.UserContext(), c.Params("slug"), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Detail godoc
// @Summary      Detalle con contadores, profundidad y ruta
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id}/detail [get]
func (h *CategoryHandler) Detail(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetDetail(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Path godoc
// @Summary      Ruta raíz → categoría (breadcrumb)
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {array}   dto.PathItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id}/path [get]
func (h *CategoryHandler) Path(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetPath(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Descendants godoc
// @Summary      IDs de todos los descendientes
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {array}   string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id}/descendants [get]
func (h *CategoryHandler) Descendants(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Descendants(c.UserContext(), c.Params("id"), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), ownerID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar categoría (parcial)
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.UpdateCategoryRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [patch]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), ownerID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Move godoc
// @Summary      Mover categoría bajo otro padre (parent_id vacío = raíz)
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.MoveCategoryRequest  true  "Nuevo padre"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/categories/{id}/move [post]
func (h *CategoryHandler) Move(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var in dto.MoveCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Move(c.UserContext(), c.Params("id"), ownerID, in.ParentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar categoría
// @Description  Sin force falla con 409 si tiene subcategorías o productos. Con force elimina el subárbol y desasigna los productos.
// @Tags         categories
// @Security     Bearer
// @Param        id     path   string  true   "ID de la categoría"
// @Param        force  query  bool    false  "Eliminar con dependientes"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	ownerID := GetCompanyID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.UserContext(), c.Params("id"), ownerID, c.QueryBool("force", false)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
