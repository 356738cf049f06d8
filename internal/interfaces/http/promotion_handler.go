package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/application/usecase"
)

// PromotionHandler maneja las peticiones HTTP para promociones (protegido).
type PromotionHandler struct {
	uc *usecase.PromotionUseCase
}

// NewPromotionHandler construye el handler.
func NewPromotionHandler(uc *usecase.PromotionUseCase) *PromotionHandler {
	return &PromotionHandler{uc: uc}
}

func actorFrom(c *fiber.Ctx) usecase.Actor {
	return usecase.Actor{ID: GetUserID(c), ExternalID: GetExternalID(c), Role: GetRole(c)}
}

// Create godoc
// @Summary      Crear promoción (manager o superior)
// @Tags         promotions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePromotionRequest  true  "Promoción"
// @Success      201   {object}  dto.PromotionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /promotions [post]
func (h *PromotionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePromotionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar promociones
// @Description  Regulares ven solo las disponibles para ellos; managers todas.
// @Tags         promotions
// @Security     Bearer
// @Produce      json
// @Param        name     query  string  false  "Substring del nombre"
// @Param        type     query  string  false  "automatic | one-time"
// @Param        started  query  bool    false  "Ya comenzadas (solo manager)"
// @Param        ended    query  bool    false  "Ya terminadas (solo manager)"
// @Success      200  {object}  dto.ListResponse[dto.PromotionResponse]
// @Router       /promotions [get]
func (h *PromotionHandler) List(c *fiber.Ctx) error {
	page, ok := parsePage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "page y limit deben ser positivos"})
	}
	f := dto.PromotionListFilters{Name: c.Query("name"), Type: c.Query("type")}
	if f.Started, ok = parseBoolQuery(c, "started"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "started debe ser true o false"})
	}
	if f.Ended, ok = parseBoolQuery(c, "ended"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ended debe ser true o false"})
	}
	out, err := h.uc.List(actorFrom(c), f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener una promoción
// @Tags         promotions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la promoción"
// @Success      200  {object}  dto.PromotionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /promotions/{id} [get]
func (h *PromotionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar una promoción (manager o superior)
// @Tags         promotions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la promoción"
// @Param        body  body  dto.UpdatePromotionRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.PromotionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /promotions/{id} [patch]
func (h *PromotionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePromotionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar una promoción no comenzada (manager o superior)
// @Tags         promotions
// @Security     Bearer
// @Param        id  path  string  true  "ID de la promoción"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /promotions/{id} [delete]
func (h *PromotionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
