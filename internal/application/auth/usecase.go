package auth

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
	"github.com/jhoicas/Puntos-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase casos de uso de autenticación: login, registro de cuentas y ciclo
// de tokens de reseteo (emisión y consumo). No hay entrega de correo: el token
// se devuelve en la respuesta y la entrega queda fuera del sistema.
type UseCase struct {
	userRepo  repository.UserRepository
	resetRepo repository.ResetTokenRepository
	jwtCfg    JWTConfig
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(userRepo repository.UserRepository, resetRepo repository.ResetTokenRepository, jwtCfg JWTConfig, tokenTTLMinutes int) *UseCase {
	return &UseCase{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		jwtCfg:    jwtCfg,
		tokenTTL:  time.Duration(tokenTTLMinutes) * time.Minute,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (para tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// contraseña: 8-20 caracteres con mayúscula, minúscula, dígito y símbolo.
var (
	rePasswordUpper  = regexp.MustCompile(`[A-Z]`)
	rePasswordLower  = regexp.MustCompile(`[a-z]`)
	rePasswordDigit  = regexp.MustCompile(`[0-9]`)
	rePasswordSymbol = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// ValidPassword valida la política de contraseñas.
func ValidPassword(pw string) bool {
	if len(pw) < 8 || len(pw) > 20 {
		return false
	}
	return rePasswordUpper.MatchString(pw) &&
		rePasswordLower.MatchString(pw) &&
		rePasswordDigit.MatchString(pw) &&
		rePasswordSymbol.MatchString(pw)
}

// Login verifica credenciales, actualiza last_login y genera el JWT.
func (uc *UseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.ExternalID == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: external_id y password son requeridos", domain.ErrValidation)
	}
	user, err := uc.userRepo.GetByExternalID(in.ExternalID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Activated() {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.ExternalID, user.Role.String(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.UpdateLastLogin(user.ID); err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: uc.now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
	}, nil
}

// Register crea una cuenta nueva sin contraseña (la activa el token de
// reseteo devuelto). Devuelve ErrConflict si el external_id o email ya existen.
func (uc *UseCase) Register(in dto.RegisterUserRequest) (*dto.RegisterUserResponse, error) {
	if in.ExternalID == "" || in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: external_id, name y email son requeridos", domain.ErrValidation)
	}
	existing, err := uc.userRepo.GetByExternalID(in.ExternalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}
	now := uc.now()
	user := &entity.User{
		ID:         uuid.New().String(),
		ExternalID: in.ExternalID,
		Name:       in.Name,
		Email:      in.Email,
		Role:       entity.RoleRegular,
		CreatedAt:  now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	reset, err := uc.issueToken(user, now)
	if err != nil {
		return nil, err
	}
	return &dto.RegisterUserResponse{
		UserResponse: dto.UserResponse{
			ID:         user.ID,
			ExternalID: user.ExternalID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       user.Role.String(),
			CreatedAt:  user.CreatedAt,
		},
		ResetToken: reset.Token,
		ExpiresAt:  reset.ExpiresAt,
	}, nil
}

// RequestReset emite un token de reseteo para el usuario, invalidando los
// anteriores. El rate limit por cliente lo aplica el middleware HTTP.
func (uc *UseCase) RequestReset(in dto.ResetRequest) (*dto.ResetResponse, error) {
	if in.ExternalID == "" {
		return nil, fmt.Errorf("%w: external_id es requerido", domain.ErrValidation)
	}
	user, err := uc.userRepo.GetByExternalID(in.ExternalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.resetRepo.InvalidateForUser(user.ID); err != nil {
		return nil, err
	}
	reset, err := uc.issueToken(user, uc.now())
	if err != nil {
		return nil, err
	}
	return &dto.ResetResponse{ResetToken: reset.Token, ExpiresAt: reset.ExpiresAt}, nil
}

// CompleteReset consume un token de reseteo y fija la nueva contraseña.
// El external_id del cuerpo debe coincidir con el dueño del token.
func (uc *UseCase) CompleteReset(token string, in dto.ResetCompleteRequest) error {
	if !ValidPassword(in.Password) {
		return fmt.Errorf("%w: la contraseña no cumple la política", domain.ErrValidation)
	}
	reset, err := uc.resetRepo.GetByToken(token)
	if err != nil {
		return err
	}
	if reset == nil {
		return domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByID(reset.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.ExternalID != in.ExternalID {
		return domain.ErrNotFound
	}
	if reset.Used || reset.Expired(uc.now()) {
		return domain.ErrGone
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	user.PasswordHash = &h
	if err := uc.userRepo.Update(user); err != nil {
		return err
	}
	return uc.resetRepo.MarkUsed(reset.Token)
}

// ChangePassword cambia la contraseña del usuario autenticado verificando la actual.
func (uc *UseCase) ChangePassword(userID string, in dto.ChangePasswordRequest) error {
	if !ValidPassword(in.New) {
		return fmt.Errorf("%w: la contraseña nueva no cumple la política", domain.ErrValidation)
	}
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil || !user.Activated() {
		return domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(in.Old)); err != nil {
		return domain.ErrUnauthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	user.PasswordHash = &h
	return uc.userRepo.Update(user)
}

func (uc *UseCase) issueToken(user *entity.User, now time.Time) (*entity.ResetToken, error) {
	reset := &entity.ResetToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(uc.tokenTTL),
		CreatedAt: now,
	}
	if err := uc.resetRepo.Create(reset); err != nil {
		return nil, err
	}
	return reset, nil
}
