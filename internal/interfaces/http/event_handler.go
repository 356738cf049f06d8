package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/application/ledger"
	"github.com/jhoicas/Puntos-api/internal/application/usecase"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
)

// EventHandler maneja las peticiones HTTP para eventos (protegido).
type EventHandler struct {
	uc       *usecase.EventUseCase
	ledgerUC *ledger.UseCase
}

// NewEventHandler construye el handler.
func NewEventHandler(uc *usecase.EventUseCase, ledgerUC *ledger.UseCase) *EventHandler {
	return &EventHandler{uc: uc, ledgerUC: ledgerUC}
}

// Create godoc
// @Summary      Crear evento (manager o superior)
// @Tags         events
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEventRequest  true  "Evento"
// @Success      201   {object}  dto.EventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /events [post]
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEventRequest
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
// @Summary      Listar eventos
// @Description  Regulares ven solo publicados y con cupo; managers todos.
// @Tags         events
// @Security     Bearer
// @Produce      json
// @Param        name       query  string  false  "Substring del nombre"
// @Param        location   query  string  false  "Substring de la ubicación"
// @Param        started    query  bool    false  "Ya comenzados"
// @Param        ended      query  bool    false  "Ya terminados"
// @Param        published  query  bool    false  "Publicados (solo manager)"
// @Param        show_full  query  bool    false  "Incluir eventos llenos"
// @Success      200  {object}  dto.ListResponse[dto.EventResponse]
// @Router       /events [get]
func (h *EventHandler) List(c *fiber.Ctx) error {
	page, ok := parsePage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "page y limit deben ser positivos"})
	}
	f := dto.EventListFilters{
		Name:     c.Query("name"),
		Location: c.Query("location"),
		ShowFull: c.QueryBool("show_full", false),
	}
	if f.Started, ok = parseBoolQuery(c, "started"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "started debe ser true o false"})
	}
	if f.Ended, ok = parseBoolQuery(c, "ended"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ended debe ser true o false"})
	}
	if f.Published, ok = parseBoolQuery(c, "published"); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "published debe ser true o false"})
	}
	out, err := h.uc.List(actorFrom(c), f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener un evento
// @Tags         events
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del evento"
// @Success      200  {object}  dto.EventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /events/{id} [get]
func (h *EventHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar un evento (manager u organizador)
// @Tags         events
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del evento"
// @Param        body  body  dto.UpdateEventRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.EventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /events/{id} [patch]
func (h *EventHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(actorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar un evento no publicado (manager o superior)
// @Tags         events
// @Security     Bearer
// @Param        id  path  string  true  "ID del evento"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /events/{id} [delete]
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddOrganizer godoc
// @Summary      Agregar organizador por external_id (manager o superior)
// @Tags         events
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del evento"
// @Param        body  body  dto.AddMemberRequest  true  "Credencial del usuario"
// @Success      201   {object}  dto.EventResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /events/{id}/organizers [post]
func (h *EventHandler) AddOrganizer(c *fiber.Ctx) error {
	var in dto.AddMemberRequest
	if err := c.BodyParser(&in); err != nil || in.ExternalID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "external_id es requerido"})
	}
	out, err := h.uc.AddOrganizer(c.Params("id"), in.ExternalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RemoveOrganizer godoc
// @Summary      Quitar organizador (manager o superior)
// @Tags         events
// @Security     Bearer
// @Param        id      path  string  true  "ID del evento"
// @Param        userId  path  string  true  "ID del usuario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /events/{id}/organizers/{userId} [delete]
func (h *EventHandler) RemoveOrganizer(c *fiber.Ctx) error {
	if err := h.uc.RemoveOrganizer(c.Params("id"), c.Params("userId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddGuest godoc
// @Summary      Agregar invitado por external_id (manager u organizador)
// @Tags         events
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del evento"
// @Param        body  body  dto.AddMemberRequest  true  "Credencial del usuario"
// @Success      201   {object}  dto.EventResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /events/{id}/guests [post]
func (h *EventHandler) AddGuest(c *fiber.Ctx) error {
	var in dto.AddMemberRequest
	if err := c.BodyParser(&in); err != nil || in.ExternalID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "external_id es requerido"})
	}
	out, err := h.uc.AddGuest(actorFrom(c), c.Params("id"), in.ExternalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RemoveGuest godoc
// @Summary      Quitar invitado (manager o superior)
// @Tags         events
// @Security     Bearer
// @Param        id      path  string  true  "ID del evento"
// @Param        userId  path  string  true  "ID del usuario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /events/{id}/guests/{userId} [delete]
func (h *EventHandler) RemoveGuest(c *fiber.Ctx) error {
	if err := h.uc.RemoveGuest(c.Params("id"), c.Params("userId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RSVP godoc
// @Summary      Inscribirse como invitado a un evento publicado
// @Tags         events
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del evento"
// @Success      201  {object}  dto.EventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      410  {object}  dto.ErrorResponse
// @Router       /events/{id}/guests/me [post]
func (h *EventHandler) RSVP(c *fiber.Ctx) error {
	out, err := h.uc.RSVP(actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CancelRSVP godoc
// @Summary      Cancelar la inscripción propia
// @Tags         events
// @Security     Bearer
// @Param        id  path  string  true  "ID del evento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      410  {object}  dto.ErrorResponse
// @Router       /events/{id}/guests/me [delete]
func (h *EventHandler) CancelRSVP(c *fiber.Ctx) error {
	if err := h.uc.CancelRSVP(actorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Award godoc
// @Summary      Premiar puntos del evento a un invitado o a todos
// @Tags         events
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del evento"
// @Param        body  body  dto.EventAwardRequest  true  "Premio"
// @Success      201   {array}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /events/{id}/transactions [post]
func (h *EventHandler) Award(c *fiber.Ctx) error {
	var in dto.EventAwardRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Type != string(entity.TxEvent) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser event"})
	}
	created, err := h.ledgerUC.AwardEvent(c.Context(), ledger.EventAwardInput{
		ActorID:    GetUserID(c),
		EventID:    c.Params("id"),
		ExternalID: in.ExternalID,
		Amount:     in.Amount,
		Remark:     in.Remark,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.TransactionResponse, 0, len(created))
	for _, t := range created {
		out = append(out, txResponse(t, ""))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
