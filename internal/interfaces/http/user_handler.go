package http

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Puntos-api/internal/application/auth"
	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/application/usecase"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// UserHandler maneja las peticiones HTTP para usuarios (protegido).
type UserHandler struct {
	uc         *usecase.UserUseCase
	authUC     *auth.UseCase
	uploadsDir string
	urlPrefix  string
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, authUC *auth.UseCase, uploadsDir, urlPrefix string) *UserHandler {
	return &UserHandler{uc: uc, authUC: authUC, uploadsDir: uploadsDir, urlPrefix: urlPrefix}
}

// Register godoc
// @Summary      Registrar un usuario nuevo
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.RegisterUserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.authUC.Register(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        name      query  string  false  "Substring de nombre o external_id"
// @Param        role      query  string  false  "Rol exacto"
// @Param        verified  query  bool    false  "Solo verificados / no verificados"
// @Param        activated query  bool    false  "Solo cuentas activadas / sin activar"
// @Param        page      query  int     false  "Página"  default(1)
// @Param        limit     query  int     false  "Límite"  default(10)
// @Success      200  {object}  dto.ListResponse[dto.UserResponse]
// @Router       /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, ok := parsePage(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "page y limit deben ser positivos"})
	}
	f := repository.UserFilter{Name: c.Query("name")}
	if s := c.Query("role"); s != "" {
		role, ok := entity.ParseRole(s)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rol desconocido"})
		}
		f.Role = &role
	}
	var ok2 bool
	if f.Verified, ok2 = parseBoolQuery(c, "verified"); !ok2 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "verified debe ser true o false"})
	}
	if f.Activated, ok2 = parseBoolQuery(c, "activated"); !ok2 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "activated debe ser true o false"})
	}
	out, err := h.uc.List(f, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener un usuario
// @Description  Cajeros reciben la vista reducida (saldo, verificación y
// @Description  promociones disponibles); managers la vista completa.
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if GetRole(c).AtLeast(entity.RoleManager) {
		out, err := h.uc.GetFull(id)
		if err != nil {
			return respondError(c, err)
		}
		if out == nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
		}
		return c.JSON(out)
	}
	out, err := h.uc.GetSummary(id)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar un usuario (manager o superior)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	actor := usecase.Actor{ID: GetUserID(c), ExternalID: GetExternalID(c), Role: GetRole(c)}
	out, err := h.uc.UpdateByManager(actor, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Perfil propio
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.GetFull(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "usuario no encontrado"})
	}
	return c.JSON(out)
}

// UpdateMe godoc
// @Summary      Actualizar el perfil propio
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateMeRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var in dto.UpdateMeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.UpdateMe(GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UploadAvatar godoc
// @Summary      Subir avatar propio
// @Tags         users
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        avatar  formData  file  true  "Imagen (png, jpg, gif, webp)"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo avatar requerido"})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "formato de imagen no soportado"})
	}
	userID := GetUserID(c)
	filename := userID + ext
	if err := c.SaveFile(file, filepath.Join(h.uploadsDir, filename)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo guardar el archivo"})
	}
	out, err := h.uc.SetAvatar(userID, fmt.Sprintf("%s/%s", h.urlPrefix, filename))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// parsePage extrae y normaliza la paginación.
func parsePage(c *fiber.Ctx) (dto.PageRequest, bool) {
	page := dto.PageRequest{Page: c.QueryInt("page", 0), Limit: c.QueryInt("limit", 0)}
	return page, page.Normalize()
}

// parseBoolQuery lee un bool opcional del query string. ok es false si el valor
// existe pero no es true/false.
func parseBoolQuery(c *fiber.Ctx, key string) (*bool, bool) {
	s := c.Query(key)
	if s == "" {
		return nil, true
	}
	switch s {
	case "true":
		v := true
		return &v, true
	case "false":
		v := false
		return &v, true
	}
	return nil, false
}
