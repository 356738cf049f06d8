package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/application/ledger"
	"github.com/jhoicas/Puntos-api/internal/application/statement"
	"github.com/jhoicas/Puntos-api/internal/application/usecase"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
)

// TransactionHandler maneja las operaciones y consultas del ledger (protegido).
type TransactionHandler struct {
	ledgerUC    *ledger.UseCase
	queryUC     *usecase.TransactionUseCase
	statementUC *statement.UseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(ledgerUC *ledger.UseCase, queryUC *usecase.TransactionUseCase, statementUC *statement.UseCase) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC, queryUC: queryUC, statementUC: statementUC}
}

// Create godoc
// @Summary      Registrar una compra o un ajuste
// @Description  type=purchase la registra un cajero; type=adjustment un manager.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "Transacción"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actorID := GetUserID(c)

	switch entity.TransactionType(in.Type) {
	case entity.TxPurchase:
		tx, err := h.ledgerUC.Purchase(c.Context(), ledger.PurchaseInput{
			ActorID:      actorID,
			ExternalID:   in.ExternalID,
			Spent:        in.Spent,
			PromotionIDs: in.PromotionIDs,
			Remark:       in.Remark,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(txResponse(tx, in.ExternalID))
	case entity.TxAdjustment:
		tx, err := h.ledgerUC.Adjustment(c.Context(), ledger.AdjustmentInput{
			ActorID:    actorID,
			ExternalID: in.ExternalID,
			Amount:     in.Amount,
			RelatedID:  in.RelatedID,
			Remark:     in.Remark,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(txResponse(tx, in.ExternalID))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser purchase o adjustment"})
	}
}

// List godoc
// @Summary      Listar transacciones (manager o superior)
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        name        query  string  false  "external_id o substring del nombre del dueño"
// @Param        type        query  string  false  "Tipo de transacción"
// @Param        promotion_id query string  false  "Promoción aplicada"
// @Param        amount      query  number  false  "Umbral de puntos (con operator)"
// @Param        operator    query  string  false  "gte | lte"
// @Param        suspicious  query  bool    false  "Solo sospechosas / no sospechosas"
// @Param        pending     query  bool    false  "Solo redenciones pendientes"
// @Success      200  {object}  dto.ListResponse[dto.TransactionResponse]
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	page, ok := parsePage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "page y limit deben ser positivos"})
	}
	f, ok := parseTransactionFilters(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	out, err := h.queryUC.List(f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una transacción (manager o superior)
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.queryUC.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetSuspicious godoc
// @Summary      Marcar o desmarcar una transacción como sospechosa
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.SetSuspiciousRequest  true  "Nueva marca"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /transactions/{id}/suspicious [patch]
func (h *TransactionHandler) SetSuspicious(c *fiber.Ctx) error {
	var in dto.SetSuspiciousRequest
	if err := c.BodyParser(&in); err != nil || in.Suspicious == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "suspicious (bool) es requerido"})
	}
	tx, err := h.ledgerUC.SetSuspicious(c.Context(), GetUserID(c), c.Params("id"), *in.Suspicious)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queryUC.GetByID(tx.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Process godoc
// @Summary      Procesar una redención pendiente (cajero o superior)
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la redención"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /transactions/{id}/processed [patch]
func (h *TransactionHandler) Process(c *fiber.Ctx) error {
	tx, err := h.ledgerUC.ProcessRedemption(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.queryUC.GetByID(tx.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateRedemption godoc
// @Summary      Solicitar una redención de puntos
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RedemptionRequest  true  "Solicitud"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /users/me/transactions [post]
func (h *TransactionHandler) CreateRedemption(c *fiber.Ctx) error {
	var in dto.RedemptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Type != string(entity.TxRedemption) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser redemption"})
	}
	tx, err := h.ledgerUC.RequestRedemption(c.Context(), ledger.RedemptionInput{
		UserID: GetUserID(c),
		Amount: in.Amount,
		Remark: in.Remark,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(txResponse(tx, GetExternalID(c)))
}

// ListMine godoc
// @Summary      Historial de transacciones propio
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.TransactionResponse]
// @Router       /users/me/transactions [get]
func (h *TransactionHandler) ListMine(c *fiber.Ctx) error {
	page, ok := parsePage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "page y limit deben ser positivos"})
	}
	f, ok := parseTransactionFilters(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	out, err := h.queryUC.ListForUser(GetUserID(c), f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DownloadStatement godoc
// @Summary      Descargar el estado de cuenta propio en PDF
// @Tags         transactions
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /users/me/transactions/statement [get]
func (h *TransactionHandler) DownloadStatement(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.statementUC.Download(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// CreateTransfer godoc
// @Summary      Transferir puntos a otro usuario
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        userId  path  string  true  "external_id del destinatario"
// @Param        body    body  dto.TransferRequest  true  "Transferencia"
// @Success      201     {object}  dto.TransactionResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /users/{userId}/transactions [post]
func (h *TransactionHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Type != string(entity.TxTransfer) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type debe ser transfer"})
	}
	result, err := h.ledgerUC.Transfer(c.Context(), ledger.TransferInput{
		SenderID:            GetUserID(c),
		RecipientExternalID: c.Params("userId"),
		Amount:              in.Amount,
		Remark:              in.Remark,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(txResponse(result.Debit, GetExternalID(c)))
}

// parseTransactionFilters extrae los filtros de query de los listados.
func parseTransactionFilters(c *fiber.Ctx) (dto.TransactionListFilters, bool) {
	f := dto.TransactionListFilters{
		Name:      c.Query("name"),
		Type:      c.Query("type"),
		Promotion: c.Query("promotion_id"),
		Operator:  c.Query("operator"),
	}
	if s := c.Query("related_id"); s != "" {
		f.RelatedID = &s
	}
	if s := c.Query("amount"); s != "" {
		amount := c.QueryFloat("amount")
		f.Amount = &amount
	}
	var ok bool
	if f.Suspicious, ok = parseBoolQuery(c, "suspicious"); !ok {
		return f, false
	}
	if f.Pending, ok = parseBoolQuery(c, "pending"); !ok {
		return f, false
	}
	return f, true
}

// txResponse convierte la transacción recién creada; el external_id del dueño
// ya lo conoce el handler por la propia petición.
func txResponse(t *entity.Transaction, externalID string) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:           t.ID,
		ExternalID:   externalID,
		Type:         string(t.Type),
		Amount:       t.Amount,
		Spent:        t.Spent,
		RelatedID:    t.RelatedID,
		Suspicious:   t.Suspicious,
		Remark:       t.Remark,
		CreatedBy:    t.CreatedBy,
		ProcessedBy:  t.ProcessedBy,
		CreatedAt:    t.CreatedAt,
		PromotionIDs: t.PromotionIDs,
	}
}
