package usecase

import (
	"fmt"
	"time"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// UserUseCase reglas de negocio para usuarios: listados con filtros,
// vistas por rol y parches con reglas de mutabilidad por campo.
type UserUseCase struct {
	userRepo  repository.UserRepository
	promoRepo repository.PromotionRepository
	now       func() time.Time
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(userRepo repository.UserRepository, promoRepo repository.PromotionRepository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo, promoRepo: promoRepo, now: time.Now}
}

// List lista usuarios con filtros (manager o superior).
func (uc *UserUseCase) List(f repository.UserFilter, page dto.PageRequest) (*dto.ListResponse[dto.UserResponse], error) {
	users, total, err := uc.userRepo.List(f, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.UserResponse]{Count: total, Results: make([]dto.UserResponse, 0, len(users))}
	for _, u := range users {
		out.Results = append(out.Results, *toUserResponse(u))
	}
	return out, nil
}

// GetFull devuelve la vista completa de un usuario (manager+ o el propio usuario).
func (uc *UserUseCase) GetFull(id string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return toUserResponse(user), nil
}

// GetSummary devuelve la vista reducida para cajeros: saldo, verificación y
// las one-time disponibles del usuario (para aplicarlas en una compra).
func (uc *UserUseCase) GetSummary(id string) (*dto.UserSummaryResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	promos, _, err := uc.promoRepo.ListAvailable(user.ID, uc.now(), 100, 0)
	if err != nil {
		return nil, err
	}
	out := &dto.UserSummaryResponse{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Name:       user.Name,
		Points:     user.Points,
		Verified:   user.Verified,
		Promotions: make([]dto.PromotionResponse, 0, len(promos)),
	}
	for _, p := range promos {
		out.Promotions = append(out.Promotions, *toPromotionResponse(p, false))
	}
	return out, nil
}

// UpdateByManager aplica el parche de PATCH /users/:id.
// Reglas: verified solo puede pasar a true; promover a manager o superuser
// requiere actor superuser; suspicious lo puede alternar un manager.
func (uc *UserUseCase) UpdateByManager(actor Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Email == nil && in.Verified == nil && in.Suspicious == nil && in.Role == nil {
		return nil, fmt.Errorf("%w: el parche no trae ningún campo", domain.ErrValidation)
	}

	if in.Email != nil {
		if *in.Email == "" {
			return nil, fmt.Errorf("%w: email no puede ser vacío", domain.ErrValidation)
		}
		user.Email = *in.Email
	}
	if in.Verified != nil {
		if !*in.Verified {
			return nil, fmt.Errorf("%w: verified solo puede establecerse en true", domain.ErrValidation)
		}
		user.Verified = true
	}
	if in.Suspicious != nil {
		user.Suspicious = *in.Suspicious
	}
	if in.Role != nil {
		role, ok := entity.ParseRole(*in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrValidation, *in.Role)
		}
		if role.AtLeast(entity.RoleManager) && !actor.Role.AtLeast(entity.RoleSuperuser) {
			return nil, domain.ErrForbidden
		}
		user.Role = role
	}

	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UpdateMe aplica el parche de PATCH /users/me (nombre, email, cumpleaños).
func (uc *UserUseCase) UpdateMe(userID string, in dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Name == nil && in.Email == nil && in.Birthday == nil {
		return nil, fmt.Errorf("%w: el parche no trae ningún campo", domain.ErrValidation)
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name no puede ser vacío", domain.ErrValidation)
		}
		user.Name = *in.Name
	}
	if in.Email != nil {
		if *in.Email == "" {
			return nil, fmt.Errorf("%w: email no puede ser vacío", domain.ErrValidation)
		}
		user.Email = *in.Email
	}
	if in.Birthday != nil {
		if _, err := time.Parse("2006-01-02", *in.Birthday); err != nil {
			return nil, fmt.Errorf("%w: birthday debe ser YYYY-MM-DD", domain.ErrValidation)
		}
		user.Birthday = in.Birthday
	}
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// SetAvatar guarda la URL pública del avatar subido.
func (uc *UserUseCase) SetAvatar(userID, url string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	user.AvatarURL = &url
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Email:      u.Email,
		Birthday:   u.Birthday,
		Role:       u.Role.String(),
		Points:     u.Points,
		Verified:   u.Verified,
		Suspicious: u.Suspicious,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
		LastLogin:  u.LastLogin,
	}
}
